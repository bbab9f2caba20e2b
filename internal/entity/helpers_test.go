package entity

import (
	"bytes"
	"testing"

	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/annel0/battlescape/internal/terrain"
	"github.com/annel0/battlescape/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	sim   *Simulation
	rec   *effects.Recorder
	world *countingWorld
	hulls *physics.HullRegistry
	moves *moveRecorder
	route *routeRecorder
	log   *bytes.Buffer
}

// countingWorld считает обращения к миру
type countingWorld struct {
	*physics.BoxWorld
	calls int
	fixed *physics.Trace
}

func (w *countingWorld) BoxTrace(start, end, mins, maxs mgl64.Vec3, levelMask uint32, mask physics.Contents) physics.Trace {
	w.calls++
	if w.fixed != nil {
		return *w.fixed
	}
	return w.BoxWorld.BoxTrace(start, end, mins, maxs, levelMask, mask)
}

type moveRecorder struct{ calls []int }

func (m *moveRecorder) ConditionalMoveCalc(le *LocalEntity) { m.calls = append(m.calls, le.Num) }

type routeRecorder struct {
	models []string
	lists  [][]string
}

func (r *routeRecorder) RecalcRouting(inline string, list []string) {
	r.models = append(r.models, inline)
	r.lists = append(r.lists, list)
}

type modelTable map[string]int

func (m modelTable) Model(name string) (int, bool) {
	i, ok := m[name]
	return i, ok
}

func (m modelTable) HasAnim(_ int, anim string) bool { return anim != "broken" }

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	var buf bytes.Buffer
	log, err := logging.NewLogger("le-test", logging.Options{Level: logging.DEBUG, Output: &buf})
	require.NoError(t, err)

	floor := physics.Brush{Hull: physics.Hull{
		Mins:     mgl64.Vec3{-4096, -4096, -16},
		Maxs:     mgl64.Vec3{4096, 4096, 0},
		Surface:  "tex_terrain/grass",
		Contents: physics.ContentsSolid,
	}}
	env := &testEnv{
		rec:   effects.NewRecorder(),
		world: &countingWorld{BoxWorld: physics.NewBoxWorld(floor)},
		hulls: physics.NewHullRegistry(),
		moves: &moveRecorder{},
		route: &routeRecorder{},
		log:   &buf,
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	env.sim = NewSimulation(cfg, Deps{
		World:     env.world,
		Hulls:     env.hulls,
		Projector: grid.Projector{},
		Particles: env.rec,
		Sounds:    env.rec,
		Terrain: terrain.NewTable(terrain.Type{
			Texture:        "grass",
			Particle:       "grass_dust",
			FootstepSound:  "footsteps/grass",
			FootstepVolume: 0.4,
		}),
		Router: env.route,
		Moves:  env.moves,
		Models: modelTable{"models/rifle": 3, "models/pistol": 4, "models/crate": 9},
		Logger: log,
	})
	return env
}

func (e *testEnv) addActor(t *testing.T, num int, pos vec.Vec3) *LocalEntity {
	t.Helper()
	le, err := e.sim.Add(num)
	require.NoError(t, err)
	le.Type = TypeActor
	le.Pos = pos
	le.Contents = physics.ContentsActor
	le.Mins = mgl64.Vec3{-8, -8, 0}
	le.Maxs = mgl64.Vec3{8, 8, 56}
	le.Origin = e.sim.deps.Projector.GridPosToVec(le.FieldSize, pos)
	return le
}

func north(n int, speed float64) []PathStep {
	steps := make([]PathStep, n)
	for i := range steps {
		steps[i] = PathStep{DV: grid.MakeDV(grid.DirNorth, 0), Speed: speed}
	}
	return steps
}
