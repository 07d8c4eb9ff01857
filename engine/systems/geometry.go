package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/preview/engine/core"
	"github.com/spaghettifunk/preview/engine/math"
	"github.com/spaghettifunk/preview/engine/renderer/metadata"
)

/**
 * @brief The configuration for the geometry system.
 */
type GeometrySystemConfig struct {
	/**
	 * @brief NOTE: Should be significantly greater than the number of static meshes because
	 * there can and will be more than one of these per mesh.
	 * Take other systems into account as well.
	 */
	MaxGeometryCount uint32
}

/**
 * @brief Geometry whose vertex and index data has been laid out in the
 * byte format the GPU reads, ready to be copied into device buffers.
 */
type Geometry struct {
	/** @brief The geometry identifier. */
	ID uuid.UUID
	/** @brief The slot of the geometry, used by backends to map to internal resources. */
	InternalID uint32
	/** @brief Incremented every time the geometry data changes. */
	Generation uint16
	/** @brief The geometry name. */
	Name string
	/** @brief The center of the geometry in local coordinates. */
	Center math.Vec3
	/** @brief The extents of the geometry in local coordinates. */
	Extents math.Extents3D

	/** @brief The vertex layout the vertex data was written with. */
	Layout      metadata.VertexLayout
	VertexCount uint32
	/** @brief Vertex buffer contents, Layout.Stride bytes per vertex. */
	VertexData []byte
	IndexCount uint32
	/** @brief Index buffer contents, metadata.IndexSize bytes per index. */
	IndexData []byte
}

type geometryReference struct {
	referenceCount uint64
	geometry       *Geometry
	autoRelease    bool
}

// GeometrySystem builds and tracks the vertex and index buffers of every
// geometry the preview draws.
type GeometrySystem struct {
	config *GeometrySystemConfig

	mu     sync.RWMutex
	ids    *core.Identifiers
	byID   map[uuid.UUID]*geometryReference
	byName map[string]uuid.UUID
}

/**
 * @brief Initializes the geometry system.
 *
 * @param config The configuration for this system.
 */
func NewGeometrySystem(config *GeometrySystemConfig) (*GeometrySystem, error) {
	if config == nil || config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogWarn("%s", err)
		return nil, err
	}
	return &GeometrySystem{
		config: config,
		ids:    core.NewIdentifiers(int(config.MaxGeometryCount)),
		byID:   make(map[uuid.UUID]*geometryReference, config.MaxGeometryCount),
		byName: make(map[string]uuid.UUID, config.MaxGeometryCount),
	}, nil
}

/**
 * @brief Registers and acquires a new geometry using the given config. When a
 * geometry with the same name exists its data is replaced in place and its
 * generation bumped.
 *
 * @param autoRelease Indicates if the acquired geometry should be unloaded when its reference count reaches 0.
 */
func (gs *GeometrySystem) AcquireFromConfig(config *metadata.GeometryConfig, layout metadata.VertexLayout, autoRelease bool) (*Geometry, error) {
	if err := config.ValidateIndices(); err != nil {
		core.LogError("func AcquireFromConfig: %s", err.Error())
		return nil, err
	}
	if err := layout.Validate(); err != nil {
		core.LogError("func AcquireFromConfig: %s", err.Error())
		return nil, err
	}

	vertexData, err := metadata.EncodeVertices(config.Vertices, layout.Stride)
	if err != nil {
		return nil, err
	}
	indexData := metadata.EncodeIndices(config.Indices)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	if id, ok := gs.byName[config.Name]; ok {
		ref := gs.byID[id]
		g := ref.geometry
		g.Generation++
		fillGeometry(g, config, layout, vertexData, indexData)
		ref.referenceCount++
		ref.autoRelease = autoRelease
		core.LogDebug("geometry '%s' updated, generation %d", g.Name, g.Generation)
		return g, nil
	}

	if uint32(len(gs.byID)) >= gs.config.MaxGeometryCount {
		err := fmt.Errorf("unable to obtain free slot for geometry '%s' (max %d): %w", config.Name, gs.config.MaxGeometryCount, core.ErrNoFreeSlot)
		core.LogError("%s", err)
		return nil, err
	}

	g := &Geometry{ID: uuid.New()}
	g.InternalID = gs.ids.Acquire(g)
	fillGeometry(g, config, layout, vertexData, indexData)

	gs.byID[g.ID] = &geometryReference{referenceCount: 1, geometry: g, autoRelease: autoRelease}
	gs.byName[g.Name] = g.ID
	core.LogDebug("geometry '%s' created: %d vertices (%d bytes), %d indices", g.Name, g.VertexCount, len(g.VertexData), g.IndexCount)
	return g, nil
}

func fillGeometry(g *Geometry, config *metadata.GeometryConfig, layout metadata.VertexLayout, vertexData, indexData []byte) {
	g.Name = config.Name
	g.Center = config.Center
	g.Extents = math.Extents3D{Min: config.MinExtents, Max: config.MaxExtents}
	g.Layout = layout
	g.VertexCount = uint32(len(config.Vertices))
	g.VertexData = vertexData
	g.IndexCount = uint32(len(config.Indices))
	g.IndexData = indexData
}

/**
 * @brief Acquires an existing geometry by id.
 */
func (gs *GeometrySystem) AcquireByID(id uuid.UUID) (*Geometry, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	ref, ok := gs.byID[id]
	if !ok {
		return nil, fmt.Errorf("geometry %s: %w", id, core.ErrGeometryNotFound)
	}
	ref.referenceCount++
	return ref.geometry, nil
}

// Get returns a geometry by name without taking a reference.
func (gs *GeometrySystem) Get(name string) (*Geometry, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	id, ok := gs.byName[name]
	if !ok {
		return nil, fmt.Errorf("geometry '%s': %w", name, core.ErrGeometryNotFound)
	}
	return gs.byID[id].geometry, nil
}

/**
 * @brief Releases a reference to the provided geometry. Auto-release
 * geometries are destroyed when the last reference goes away.
 */
func (gs *GeometrySystem) Release(geometry *Geometry) error {
	if geometry == nil {
		return fmt.Errorf("release of nil geometry: %w", core.ErrGeometryNotFound)
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	ref, ok := gs.byID[geometry.ID]
	if !ok {
		return fmt.Errorf("geometry %s: %w", geometry.ID, core.ErrGeometryNotFound)
	}
	if ref.referenceCount > 0 {
		ref.referenceCount--
	}
	if ref.referenceCount == 0 && ref.autoRelease {
		gs.destroyGeometry(ref.geometry)
	}
	return nil
}

func (gs *GeometrySystem) destroyGeometry(g *Geometry) {
	if err := gs.ids.Release(g.InternalID); err != nil {
		core.LogWarn("%s", err)
	}
	delete(gs.byID, g.ID)
	delete(gs.byName, g.Name)
	core.LogDebug("geometry '%s' destroyed", g.Name)
	g.VertexData = nil
	g.IndexData = nil
	g.ID = uuid.Nil
}

// ReferenceCount is the number of outstanding references to the geometry
// with the given id.
func (gs *GeometrySystem) ReferenceCount(id uuid.UUID) (uint64, bool) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	ref, ok := gs.byID[id]
	if !ok {
		return 0, false
	}
	return ref.referenceCount, true
}

// Count is the number of live geometries.
func (gs *GeometrySystem) Count() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.byID)
}

/**
 * @brief Shuts down the geometry system, dropping every geometry regardless
 * of its reference count.
 */
func (gs *GeometrySystem) Shutdown() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	for _, ref := range gs.byID {
		gs.destroyGeometry(ref.geometry)
	}
}
