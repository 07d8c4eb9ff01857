//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Draws the configured number of frames and dumps the buffers.
func (Run) Preview() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run preview...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", configFile), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs until interrupted, reloading on every change to the configuration or texture.
func (Run) Watch() error {
	if _, err := executeCmd("go", withArgs("run", ".", "-config", configFile, "-frames", "0", "-backend", "capture", "-watch"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the test suite.
func (Run) Tests() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
