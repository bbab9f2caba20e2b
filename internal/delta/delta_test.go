package delta

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/entity"
	"github.com/annel0/battlescape/internal/eventbus"
	"github.com/annel0/battlescape/internal/grid"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/annel0/battlescape/internal/physics"
	"github.com/annel0/battlescape/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
fire_defs:
  - name: rifle_single
    projectile: tracer
    impact: spark
    hit_body: blood
    impact_sound: impact/metal
    hit_body_sound: impact/flesh
    speed: 0
  - name: frag_throw
    projectile: grenade
    impact: explosion
    impact_sound: impact/boom
    speed: 400
items:
  - id: rifle
    type: rifle
    anim_index: 2
    shape: 7
    model: models/rifle
  - id: medkit
    type: misc
    shape: 1
    model: models/medkit
`

type models map[string]int

func (m models) Model(name string) (int, bool) {
	i, ok := m[name]
	return i, ok
}

func (models) HasAnim(int, string) bool { return true }

type fixture struct {
	sim *entity.Simulation
	rec *effects.Recorder
	app *Applier
	log *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var buf bytes.Buffer
	log, err := logging.NewLogger("delta-test", logging.Options{Level: logging.DEBUG, Output: &buf})
	require.NoError(t, err)

	rec := effects.NewRecorder()
	sim := entity.NewSimulation(entity.Config{Seed: 3}, entity.Deps{
		World:     physics.NewBoxWorld(),
		Particles: rec,
		Sounds:    rec,
		Models:    models{"models/soldier": 1, "models/rifle": 2, "models/medkit": 5, "*4": 6},
		Logger:    log,
	})
	cat, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	return &fixture{sim: sim, rec: rec, app: NewApplier(sim, cat, log), log: &buf}
}

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	fd, err := cat.FireDef("rifle_single")
	require.NoError(t, err)
	assert.Equal(t, "tracer", fd.Projectile)
	od, err := cat.Item("rifle")
	require.NoError(t, err)
	assert.Equal(t, 2, od.AnimationIndex)

	_, err = cat.FireDef("laser")
	assert.ErrorIs(t, err, entity.ErrMissingResource)
	none, err := cat.Item("")
	assert.NoError(t, err)
	assert.Nil(t, none)

	_, err = ParseCatalog([]byte("items:\n  - type: rifle\n"))
	assert.Error(t, err)
}

func TestActorAppearAndMove(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.app.Apply(Delta{
		Kind: ActorAppear, Num: 7, Pos: vec.Vec3{X: 2, Y: 2}, Dir: int(grid.DirNorth),
		Team: 1, HP: 80, Model: "models/soldier", Right: "rifle",
	}))
	le, ok := f.sim.Get(7)
	require.True(t, ok)
	assert.Equal(t, entity.TypeActor, le.Type)
	assert.Equal(t, grid.DirectionAngles[grid.DirNorth], le.Angles[physics.Yaw])
	assert.Equal(t, "rifle", le.Right.ID)
	assert.Equal(t, 1, le.ModelIndex)
	assert.Equal(t, physics.ContentsActor, le.Contents)
	assert.Equal(t, entity.ThinkIdle, le.Think())

	require.NoError(t, f.sim.Tick(context.Background(), 100))
	assert.Equal(t, "stand2", le.Anim)

	require.NoError(t, f.app.Apply(Delta{
		Kind:   ActorMove,
		Num:    7,
		Steps:  []Step{{Dir: int(grid.DirNorth), Speed: 32}, {Dir: int(grid.DirNorth), Speed: 32}},
		Target: vec.Vec3{X: 2, Y: 4},
	}))
	assert.Equal(t, entity.ThinkPathMove, le.Think())
	assert.Equal(t, 2, le.PathLength)
	assert.Equal(t, "walk2", le.Anim)

	for now := int64(200); now <= 2200; now += 100 {
		require.NoError(t, f.sim.Tick(context.Background(), now))
	}
	assert.Equal(t, vec.Vec3{X: 2, Y: 4}, le.Pos)
	assert.Equal(t, uint64(2), f.app.Applied())
}

func TestActor2x2(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Apply(Delta{Kind: ActorAppear, Num: 3, Size: 2}))
	le, _ := f.sim.Get(3)
	assert.Equal(t, entity.TypeActor2x2, le.Type)
	assert.Equal(t, grid.ActorSize2x2, le.FieldSize)
	assert.Equal(t, mgl64.Vec3{28, 28, 56}, le.Maxs)
}

func TestMoveUnknownEntityIsFatal(t *testing.T) {
	f := newFixture(t)
	err := f.app.Apply(Delta{Kind: ActorMove, Num: 99, Steps: []Step{{Speed: 1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrDesync)
	assert.Contains(t, err.Error(), "actor_move #99")
}

func TestNonFatalDeltasAreSkipped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Apply(Delta{Kind: "teleport", Num: 1}))
	require.NoError(t, f.app.Apply(Delta{Kind: EntityAppear, Num: 1, Type: "spaceship"}))
	require.NoError(t, f.app.Apply(Delta{Kind: Shoot, Fire: "rifle_single", Flags: []string{"sideways"}}))
	assert.Zero(t, f.app.Applied())
	assert.Contains(t, f.log.String(), "пропущена")
}

func TestStateChangeAndPerish(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Apply(Delta{Kind: ActorAppear, Num: 1}))
	require.NoError(t, f.app.Apply(Delta{Kind: ActorStateChange, Num: 1, State: 2}))

	le, _ := f.sim.Get(1)
	assert.Equal(t, physics.ContentsDeadActor, le.Contents)
	require.NoError(t, f.sim.Tick(context.Background(), 10))
	assert.Equal(t, "dead2", le.Anim)

	require.NoError(t, f.app.Apply(Delta{Kind: EntityPerish, Num: 1}))
	assert.True(t, le.Invisible)

	require.NoError(t, f.app.Apply(Delta{Kind: EntityDestroy, Num: 1}))
	_, ok := f.sim.Get(1)
	assert.False(t, ok)
}

func TestItemsOnFloor(t *testing.T) {
	f := newFixture(t)
	pos := vec.Vec3{X: 4, Y: 4}
	require.NoError(t, f.app.Apply(Delta{Kind: ActorAppear, Num: 1, Pos: pos}))
	require.NoError(t, f.app.Apply(Delta{Kind: EntityAppear, Num: 2, Type: "item", Pos: pos, Items: []string{"medkit", "rifle"}}))

	items, ok := f.sim.Get(2)
	require.True(t, ok)
	assert.Equal(t, "models/rifle", items.ModelName)
	actor, _ := f.sim.Get(1)
	assert.Same(t, items.Floor, actor.Floor)

	require.NoError(t, f.app.Apply(Delta{Kind: ItemFloor, Num: 2, Items: []string{"medkit"}}))
	assert.Equal(t, "models/medkit", items.ModelName)

	require.NoError(t, f.app.Apply(Delta{Kind: EntityPerish, Num: 2}))
	assert.True(t, items.Invisible)
	assert.Empty(t, items.Floor.Items)

	err := f.app.Apply(Delta{Kind: ItemFloor, Num: 3, Pos: pos, Items: []string{"ghost"}})
	assert.ErrorIs(t, err, entity.ErrMissingResource)
}

func TestShootAndGrenade(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Apply(Delta{
		Kind: Shoot, Fire: "rifle_single", Flags: []string{"body"},
		From: mgl64.Vec3{0, 0, 40}, To: mgl64.Vec3{100, 0, 40}, Normal: mgl64.Vec3{-1, 0, 0},
	}))
	assert.Equal(t, []string{"tracer", "blood"}, f.rec.SpawnedNames())
	assert.Equal(t, []string{"impact/flesh"}, f.rec.PlayedNames())

	require.NoError(t, f.app.Apply(Delta{
		Kind: ThrowGrenade, Fire: "frag_throw", Flags: []string{"impact"},
		From: mgl64.Vec3{0, 0, 40}, Velocity: mgl64.Vec3{100, 0, 200}, Duration: 800,
	}))
	grenade, ok := f.sim.Pool().Find(entity.TypeParticle, vec.Vec3{})
	require.True(t, ok)
	assert.Equal(t, entity.ThinkProjectile, grenade.Think())
	assert.Equal(t, "explosion", grenade.Ref1)
}

func TestBrushesAndDoors(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.app.Apply(Delta{Kind: EntityAppear, Num: 10, Type: "door", InlineModel: "*4", LevelFlags: 1}))
	door, ok := f.sim.Get(10)
	require.True(t, ok)
	assert.Equal(t, entity.ThinkBrush, door.Think())

	require.NoError(t, f.app.Apply(Delta{Kind: DoorOpen, Num: 10, Angles: mgl64.Vec3{0, 90, 0}}))
	assert.Equal(t, 90.0, door.Angles[physics.Yaw])

	err := f.app.Apply(Delta{Kind: EntityAppear, Num: 10, Type: "door"})
	assert.ErrorIs(t, err, entity.ErrDesync)
}

func TestBrushRegistersHull(t *testing.T) {
	f := newFixture(t)
	hulls := physics.NewHullRegistry()
	f.app.SetHulls(hulls)

	require.NoError(t, f.app.Apply(Delta{
		Kind: EntityAppear, Num: 12, Type: "breakable", InlineModel: "*4",
		Mins: mgl64.Vec3{-16, -16, 0}, Maxs: mgl64.Vec3{16, 16, 32},
	}))
	wall, ok := f.sim.Get(12)
	require.True(t, ok)
	assert.Equal(t, 6, wall.ModelIndex)
	h, ok := hulls.Hull(6)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{16, 16, 32}, h.Maxs)

	// браш без известной модели остаётся без хулла
	require.NoError(t, f.app.Apply(Delta{Kind: EntityAppear, Num: 13, Type: "breakable", InlineModel: "*9"}))
	other, _ := f.sim.Get(13)
	assert.Zero(t, other.ModelIndex)
}

func TestAmbientSoundMissingSample(t *testing.T) {
	f := newFixture(t)
	f.rec.Missing["ambience/none"] = true
	require.NoError(t, f.app.Apply(Delta{Kind: AmbientSound, Sound: "sound/ambience/none", Volume: 0.5}))
	assert.Zero(t, f.sim.Pool().InUse())

	require.NoError(t, f.app.Apply(Delta{Kind: AmbientSound, Sound: "sound/ambience/wind", Volume: 0.5}))
	assert.Equal(t, 1, f.sim.Pool().InUse())
}

func TestQueue(t *testing.T) {
	q := NewQueue(2)
	ctx := context.Background()
	require.NoError(t, q.Push(ctx, Delta{Kind: ActorMove, Num: 1}))
	require.NoError(t, q.Push(ctx, Delta{Kind: ActorMove, Num: 2}))
	assert.Equal(t, 2, q.Len())

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Push(short, Delta{}), context.DeadlineExceeded)

	got := q.Drain(nil)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Num)
	assert.Empty(t, q.Drain(nil))

	q.Close()
	assert.ErrorIs(t, q.Push(ctx, Delta{}), ErrQueueClosed)
	q.Close()
}

func TestBusBridge(t *testing.T) {
	bus := eventbus.NewMemoryBus(8)
	defer bus.Close()
	ctx := context.Background()
	q := NewQueue(8)

	_, err := Subscribe(ctx, bus, "s1", q)
	require.NoError(t, err)
	require.NoError(t, Publish(ctx, bus, "server", "other", Delta{Kind: ActorMove, Num: 1}))
	require.NoError(t, Publish(ctx, bus, "server", "s1", Delta{Kind: ActorMove, Num: 2, Target: vec.Vec3{X: 1}}))

	assert.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, 5*time.Millisecond)
	got := q.Drain(nil)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Num)
	assert.Equal(t, vec.Vec3{X: 1}, got[0].Target)
}

func TestScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(`
name: ambush
deltas:
  - at: 500
    kind: actor_move
    num: 1
    steps: [{dir: 2, speed: 32}]
    target: {x: 0, y: 1, z: 0}
  - at: 0
    kind: actor_appear
    num: 1
    pos: {x: 0, y: 0, z: 0}
`))
	require.NoError(t, err)
	assert.Equal(t, "ambush", sc.Name)

	first := sc.Due(0)
	require.Len(t, first, 1)
	assert.Equal(t, ActorAppear, first[0].Kind)
	assert.Empty(t, sc.Due(499))
	second := sc.Due(500)
	require.Len(t, second, 1)
	assert.Equal(t, grid.DirNorth, second[0].PathSteps()[0].DV.Dir())
	assert.True(t, sc.Done())

	_, err = ParseScenario([]byte("deltas:\n  - at: 1\n"))
	assert.Error(t, err)
}
