// Package scenelua loads scene documents and scenario expectations from Lua
// scripts. A script builds a scene through a small DSL and returns it:
//
//	local s = Scene.new("courtyard")
//	s:grid(5)
//	s:wall{x1 = 50, y1 = -20, x2 = 50, y2 = 20}
//	s:token{id = "archer", x = 0, y = 0, size = "medium"}
//	s:token{id = "raider", x = 97.5, y = 0}
//	s:expect{attacker = "archer", target = "raider", level = "standard"}
//	return s
package scenelua

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/louisbranch/defilade/internal/geo"
	"github.com/louisbranch/defilade/internal/scene"
)

const scriptTypeName = "defilade_scene"

// Expectation is one scenario assertion: evaluate cover for the pair and
// compare against the wanted level.
type Expectation struct {
	Name       string
	AttackerID string
	TargetID   string
	Origin     *geo.Point
	Mode       string
	Level      string
}

// Script is the loaded result: a scene document plus its expectation steps.
type Script struct {
	Scene        scene.Scene
	Expectations []Expectation
}

// LoadFile runs a Lua scene script from disk.
func LoadFile(path string) (*Script, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return run(state)
}

// Load runs a Lua scene script from a source string.
func Load(source string) (*Script, error) {
	state := newState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return run(state)
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)

	lua.NewMetaTable(state, scriptTypeName)
	state.NewTable()
	lua.SetFunctions(state, scriptMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, sceneConstructor, 0)
	state.SetGlobal("Scene")
	return state
}

func run(state *lua.State) (*Script, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scene script must return a Scene")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	script, ok := ud.(*Script)
	if !ok || script == nil {
		return nil, fmt.Errorf("scene script returned an invalid Scene")
	}
	script.Scene.Normalize()
	if err := script.Scene.Validate(); err != nil {
		return nil, err
	}
	return script, nil
}

var sceneConstructor = []lua.RegistryFunction{
	{Name: "new", Function: sceneNew},
}

var scriptMethods = []lua.RegistryFunction{
	{Name: "grid", Function: sceneGrid},
	{Name: "token", Function: sceneToken},
	{Name: "wall", Function: sceneWall},
	{Name: "expect", Function: sceneExpect},
}

func sceneNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	script := &Script{Scene: scene.Scene{Name: name}}
	state.PushUserData(script)
	lua.SetMetaTableNamed(state, scriptTypeName)
	return 1
}

func sceneGrid(state *lua.State) int {
	script := checkScript(state)
	script.Scene.GridSize = lua.CheckNumber(state, 2)
	return 0
}

func sceneToken(state *lua.State) int {
	script := checkScript(state)
	lua.CheckType(state, 2, lua.TypeTable)
	fields := tableToMap(state, 2)

	id := stringField(fields, "id")
	if id == "" {
		lua.ArgumentError(state, 2, "token requires an id")
		return 0
	}
	script.Scene.Tokens = append(script.Scene.Tokens, scene.Token{
		ID:          id,
		X:           numberField(fields, "x"),
		Y:           numberField(fields, "y"),
		Size:        stringField(fields, "size"),
		Kind:        stringField(fields, "kind"),
		Elevation:   numberField(fields, "elevation"),
		Dead:        boolField(fields, "dead"),
		Undetected:  boolField(fields, "undetected"),
		Prone:       boolField(fields, "prone"),
		NeverBlocks: boolField(fields, "never_blocks"),
		GrantsCover: boolField(fields, "grants_cover"),
		Allegiance:  stringField(fields, "allegiance"),
		Cover:       stringField(fields, "cover"),
	})
	return 0
}

func sceneWall(state *lua.State) int {
	script := checkScript(state)
	lua.CheckType(state, 2, lua.TypeTable)
	fields := tableToMap(state, 2)

	blocks := true
	if v, ok := fields["blocks_sight"].(bool); ok {
		blocks = v
	}
	script.Scene.Walls = append(script.Scene.Walls, scene.Wall{
		X1:          numberField(fields, "x1"),
		Y1:          numberField(fields, "y1"),
		X2:          numberField(fields, "x2"),
		Y2:          numberField(fields, "y2"),
		BlocksSight: blocks,
		Direction:   stringField(fields, "direction"),
		Door:        stringField(fields, "door"),
		Cover:       stringField(fields, "cover"),
	})
	return 0
}

func sceneExpect(state *lua.State) int {
	script := checkScript(state)
	lua.CheckType(state, 2, lua.TypeTable)
	fields := tableToMap(state, 2)

	exp := Expectation{
		Name:       stringField(fields, "name"),
		AttackerID: stringField(fields, "attacker"),
		TargetID:   stringField(fields, "target"),
		Mode:       stringField(fields, "mode"),
		Level:      stringField(fields, "level"),
	}
	if origin, ok := fields["origin"].(map[string]any); ok {
		exp.Origin = &geo.Point{X: numberField(origin, "x"), Y: numberField(origin, "y")}
	}
	if exp.Level == "" {
		lua.ArgumentError(state, 2, "expect requires a level")
		return 0
	}
	if exp.TargetID == "" {
		lua.ArgumentError(state, 2, "expect requires a target")
		return 0
	}
	if exp.AttackerID == "" && exp.Origin == nil {
		lua.ArgumentError(state, 2, "expect requires an attacker or an origin")
		return 0
	}
	script.Expectations = append(script.Expectations, exp)
	return 0
}

func checkScript(state *lua.State) *Script {
	ud := lua.CheckUserData(state, 1, scriptTypeName)
	if script, ok := ud.(*Script); ok && script != nil {
		return script
	}
	lua.ArgumentError(state, 1, "scene expected")
	return nil
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}

func numberField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func boolField(fields map[string]any, key string) bool {
	v, _ := fields[key].(bool)
	return v
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToMap(state, index)
	default:
		return nil
	}
}
