package persist

import (
	"slices"

	"github.com/pders01/scene-state/internal/models"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// plan is a validated save document, ready to drive a load.
type plan struct {
	path        string
	activeScene string
	scenes      []string
	objects     []gjson.Result
}

// parseDocument validates data completely before anything is loaded, so a
// rejected document has no side effects.
func parseDocument(path string, data []byte) (*plan, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrapf(ErrParse, "%s", path)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.Wrapf(ErrInvalidDocument, "%s: root is not an object", path)
	}

	scenes := root.Get(models.ScenesKey)
	if !scenes.Exists() || !scenes.IsArray() || len(scenes.Array()) == 0 {
		return nil, errors.Wrapf(ErrNoScenes, "%s", path)
	}
	p := &plan{path: path}
	for i, s := range scenes.Array() {
		if s.Type != gjson.String || s.String() == "" {
			return nil, errors.Wrapf(ErrInvalidDocument, "%s: %s[%d] is not a scene name", path, models.ScenesKey, i)
		}
		p.scenes = append(p.scenes, s.String())
	}

	active := root.Get(models.ActiveSceneKey)
	if !active.Exists() || active.Type != gjson.String {
		return nil, errors.Wrapf(ErrNoActiveScene, "%s", path)
	}
	p.activeScene = active.String()
	if !slices.Contains(p.scenes, p.activeScene) {
		return nil, errors.Wrapf(ErrActiveSceneNotLoaded, "%s: %q is not among %v", path, p.activeScene, p.scenes)
	}

	objects := root.Get(models.ObjectsKey)
	if !objects.Exists() {
		return nil, errors.Wrapf(ErrNoObjects, "%s", path)
	}
	if !objects.IsArray() {
		return nil, errors.Wrapf(ErrInvalidDocument, "%s: %s is not an array", path, models.ObjectsKey)
	}
	p.objects = objects.Array()
	return p, nil
}

// Inspect validates a save document and summarizes it without loading it.
func Inspect(path string, data []byte) (*models.Summary, error) {
	p, err := parseDocument(path, data)
	if err != nil {
		return nil, err
	}
	s := &models.Summary{
		Path:        path,
		ActiveScene: p.activeScene,
		Scenes:      p.scenes,
		Objects:     make([]models.ObjectSummary, 0, len(p.objects)),
	}
	for _, obj := range p.objects {
		id, _ := models.SnapshotID(obj)
		s.Objects = append(s.Objects, models.ObjectSummary{
			SaveID: id,
			Fields: models.SnapshotFields(obj),
		})
	}
	return s, nil
}
