package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/raushankrgupta/fitly-atelier/models"
)

// fakeGenerator returns images that spell out how they were produced
type fakeGenerator struct {
	mu    sync.Mutex
	calls []string
	// failOn makes the n-th call (1-based) fail with err
	failOn int
	err    error
	// gate, when set, blocks every call until it is closed
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeGenerator) call(name string, out string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	n := len(f.calls)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if f.failOn == n {
		return "", f.err
	}
	return out, nil
}

func (f *fakeGenerator) NormalizeModelPhoto(ctx context.Context, raw string) (string, error) {
	return f.call("normalize", "twin("+raw+")")
}

func (f *fakeGenerator) CompositeGarment(ctx context.Context, base, garment string, target models.ClothingTarget) (string, error) {
	return f.call("composite", fmt.Sprintf("%s+%s@%s", base, garment, target))
}

func (f *fakeGenerator) RenderPose(ctx context.Context, base, pose string) (string, error) {
	return f.call("pose", fmt.Sprintf("%s#%d", base, models.PoseIndex(pose)))
}

func (f *fakeGenerator) RemoveJacket(ctx context.Context, base string) (string, error) {
	return f.call("remove_jacket", base+"-jacket")
}

func (f *fakeGenerator) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []models.TryOn
}

func (r *fakeRecorder) Record(ctx context.Context, t models.TryOn) error {
	r.mu.Lock()
	r.entries = append(r.entries, t)
	r.mu.Unlock()
	return nil
}

func garment(id string) models.Garment {
	return models.Garment{ID: id, Name: "Garment " + id, URL: id, Type: models.GarmentFabric, Category: models.CategoryFabric}
}

func noWardrobe() []models.Garment { return nil }
