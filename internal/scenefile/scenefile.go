// Package scenefile turns a scene description into a renderable scene.
package scenefile

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/smasonuk/tridim"
	"github.com/smasonuk/tridim/internal/config"
	"github.com/smasonuk/tridim/internal/logger"
)

// Build creates a scene from cfg. Meshes are stored in store and model
// paths are resolved against baseDir. A model that can not be loaded leaves
// an empty entity in its place. Config errors fail the build and release
// every entity created so far.
func Build(cfg *config.Config, store *tridim.MeshStore, baseDir string) (*tridim.Scene, error) {
	lens, err := tridim.NewLens(tridim.LensKind(cfg.Render.Lens), cfg.Render.LensDepth, cfg.Render.FieldOfView)
	if err != nil {
		return nil, err
	}

	scene := tridim.NewSceneIn(store, cfg.Render.Width, cfg.Render.Height, lens)
	scene.Camera().SetPosition(cfg.Camera.Position)
	scene.Camera().SetRotation(cfg.Camera.Rotation)

	for i := range cfg.Scene.Entities {
		entity, err := BuildEntity(&cfg.Scene.Entities[i], store, baseDir)
		if err != nil {
			scene.Release()
			return nil, err
		}
		scene.AddEntity(entity)
	}

	logger.Info("built scene",
		zap.Int("width", cfg.Render.Width),
		zap.Int("height", cfg.Render.Height),
		zap.String("lens", cfg.Render.Lens),
		zap.Int("entities", len(scene.Entities())),
		zap.Int("mesh_bytes", store.MemorySize()))
	return scene, nil
}

// BuildEntity creates the entity tree described by ec.
func BuildEntity(ec *config.EntityConfig, store *tridim.MeshStore, baseDir string) (*tridim.Entity, error) {
	entity, err := newEntity(ec, store, baseDir)
	if err != nil {
		return nil, err
	}

	entity.SetPosition(ec.Position)
	entity.SetRotation(ec.Rotation)
	entity.SetEulerRotation(ec.EulerRotation)
	if ec.Scale != nil {
		entity.SetScale(*ec.Scale)
	}

	for i := range ec.Children {
		child, err := BuildEntity(&ec.Children[i], store, baseDir)
		if err != nil {
			entity.Release()
			return nil, fmt.Errorf("%s: %w", ec.Name, err)
		}
		entity.AddChild(child)
	}
	return entity, nil
}

func newEntity(ec *config.EntityConfig, store *tridim.MeshStore, baseDir string) (*tridim.Entity, error) {
	if ec.Model != "" {
		path := ModelPath(baseDir, ec.Model)
		if len(ec.Materials) == 0 {
			entity, err := tridim.NewEntityFromFileIn(store, ec.Name, path)
			if err != nil {
				return emptyEntity(ec, store, path, err), nil
			}
			return entity, nil
		}

		// Recolored models get their own slot so other entities using the
		// file keep its colors.
		mesh, loadErr := tridim.LoadMeshFile(path)
		if loadErr != nil {
			mesh = tridim.EmptyMesh()
		}
		mesh, err := applyMaterials(mesh, ec.Materials)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", ec.Name, err)
		}
		if loadErr != nil {
			return emptyEntity(ec, store, path, loadErr), nil
		}
		entity := tridim.NewEntityIn(store, ec.Name, tridim.EmptyMesh())
		entity.SetMesh(mesh)
		return entity, nil
	}

	mesh := tridim.EmptyMesh()
	if ec.Box != nil {
		mesh = tridim.NewBoxMesh(*ec.Box)
	}
	mesh, err := applyMaterials(mesh, ec.Materials)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", ec.Name, err)
	}
	return tridim.NewEntityIn(store, ec.Name, mesh), nil
}

func emptyEntity(ec *config.EntityConfig, store *tridim.MeshStore, path string, err error) *tridim.Entity {
	logger.Warn("could not load model, entity is left empty",
		zap.String("entity", ec.Name),
		zap.String("path", path),
		zap.Error(err))
	return tridim.NewEntityIn(store, ec.Name, tridim.EmptyMesh())
}

// ModelPath resolves a model path of a scene file.
func ModelPath(baseDir, model string) string {
	if filepath.IsAbs(model) || baseDir == "" {
		return model
	}
	return filepath.Join(baseDir, model)
}

// applyMaterials returns mesh with its material table replaced. Materials
// listed first win where ranges overlap.
func applyMaterials(mesh *tridim.Mesh, materials []config.MaterialConfig) (*tridim.Mesh, error) {
	if len(materials) == 0 {
		return mesh, nil
	}

	splits := make([]tridim.SplitMaterial, 0, len(materials))
	for _, mc := range materials {
		material, err := newMaterial(mc)
		if err != nil {
			return nil, err
		}
		faces := tridim.FaceRange{0, len(mesh.Faces())}
		if mc.Faces != nil {
			faces = tridim.FaceRange(*mc.Faces)
		}
		splits = append(splits, tridim.SplitMaterial{Range: faces, Material: material})
	}
	return mesh.WithMaterials(splits...), nil
}

func newMaterial(mc config.MaterialConfig) (*tridim.SimpleColorMaterial, error) {
	var colors [3]uint32
	for i, value := range []string{mc.Vertex, mc.Edge, mc.Face} {
		color, err := config.ParseColor(value)
		if err != nil {
			return nil, err
		}
		colors[i] = color
	}
	return tridim.NewSimpleColorMaterial(colors[0], colors[1], colors[2]), nil
}
