//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the preview shader to SPIR-V in out/.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the preview binary.
func (Build) Preview() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/preview", "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	if _, err := executeCmd("go", withArgs("run", ".", "-config", configFile, "-compile-only"), withStream()); err != nil {
		return err
	}
	return nil
}
