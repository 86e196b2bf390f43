package seed

import (
	"fmt"

	"github.com/louisbranch/defilade/internal/scene"
)

// demoScene is a small courtyard with one wall, one pillar, and tokens on
// both sides of it.
func demoScene() scene.Scene {
	return scene.Scene{
		ID:       "demo-courtyard",
		Name:     "Demo Courtyard",
		GridSize: 5,
		Tokens: []scene.Token{
			{ID: "archer", X: 2.5, Y: 2.5, Size: "medium"},
			{ID: "knight", X: 2.5, Y: 22.5, Size: "medium"},
			{ID: "raider", X: 97.5, Y: 2.5, Size: "medium"},
			{ID: "ogre", X: 52.5, Y: 22.5, Size: "large"},
			{ID: "cart", X: 47.5, Y: 2.5, Size: "large", Kind: "object"},
		},
		Walls: []scene.Wall{
			{X1: 70, Y1: -10, X2: 70, Y2: 15, BlocksSight: true},
			{X1: 30, Y1: 30, X2: 55, Y2: 30, BlocksSight: true, Door: "closed"},
		},
	}
}

// siegeScenes builds keep assaults: a long curtain wall with a gate, towers
// flanking it, defenders behind and attackers spread before it.
func (g *Generator) siegeScenes() []scene.Scene {
	count := g.sceneCount(3)
	docs := make([]scene.Scene, 0, count)
	for i := 0; i < count; i++ {
		gateX := 40 + g.rng.Float64()*40
		doc := scene.Scene{
			ID:       fmt.Sprintf("siege-%02d", i+1),
			Name:     fmt.Sprintf("Siege of the Keep %d", i+1),
			GridSize: 5,
			Walls: []scene.Wall{
				{X1: 0, Y1: 50, X2: gateX - 5, Y2: 50, BlocksSight: true},
				{X1: gateX - 5, Y1: 50, X2: gateX + 5, Y2: 50, BlocksSight: true, Door: "closed"},
				{X1: gateX + 5, Y1: 50, X2: 120, Y2: 50, BlocksSight: true},
				// Arrow slits fire outward only.
				{X1: 20, Y1: 55, X2: 30, Y2: 55, BlocksSight: true, Direction: "left"},
				{X1: 90, Y1: 55, X2: 100, Y2: 55, BlocksSight: true, Direction: "left"},
			},
		}
		defenders := 2 + g.rng.Intn(3)
		for d := 0; d < defenders; d++ {
			doc.Tokens = append(doc.Tokens, scene.Token{
				ID:   fmt.Sprintf("defender-%d", d+1),
				X:    10 + g.rng.Float64()*100,
				Y:    60 + g.rng.Float64()*20,
				Size: "medium",
			})
		}
		attackers := 3 + g.rng.Intn(4)
		for a := 0; a < attackers; a++ {
			size := "medium"
			if g.rng.Float64() < 0.25 {
				size = "large"
			}
			doc.Tokens = append(doc.Tokens, scene.Token{
				ID:   fmt.Sprintf("attacker-%d", a+1),
				X:    10 + g.rng.Float64()*100,
				Y:    g.rng.Float64() * 40,
				Size: size,
			})
		}
		doc.Tokens = append(doc.Tokens, scene.Token{
			ID: "ram", X: gateX, Y: 40, Size: "huge", Kind: "object",
		})
		docs = append(docs, doc)
	}
	return docs
}

// warcampScenes builds open camps: many creatures, tents as cover-granting
// objects, no walls.
func (g *Generator) warcampScenes() []scene.Scene {
	count := g.sceneCount(2)
	docs := make([]scene.Scene, 0, count)
	for i := 0; i < count; i++ {
		doc := scene.Scene{
			ID:       fmt.Sprintf("warcamp-%02d", i+1),
			Name:     fmt.Sprintf("War Camp %d", i+1),
			GridSize: 5,
		}
		tents := 3 + g.rng.Intn(3)
		for n := 0; n < tents; n++ {
			doc.Tokens = append(doc.Tokens, scene.Token{
				ID:          fmt.Sprintf("tent-%d", n+1),
				X:           g.rng.Float64() * 150,
				Y:           g.rng.Float64() * 150,
				Size:        "huge",
				Kind:        "object",
				GrantsCover: true,
			})
		}
		creatures := 6 + g.rng.Intn(6)
		for c := 0; c < creatures; c++ {
			token := scene.Token{
				ID:   fmt.Sprintf("warrior-%d", c+1),
				X:    g.rng.Float64() * 150,
				Y:    g.rng.Float64() * 150,
				Size: "medium",
			}
			if g.rng.Float64() < 0.2 {
				token.Prone = true
			}
			if c%2 == 0 {
				token.Allegiance = "red"
			} else {
				token.Allegiance = "blue"
			}
			doc.Tokens = append(doc.Tokens, token)
		}
		docs = append(docs, doc)
	}
	return docs
}
