package project

import (
	"mflow/pkg/workspace"
)

const mainTemplate = `// Entry point
import star from "shapes/custom.mflow"

let sunSize = 60
let sunColor = #F5A623

fn drawSun(x, y) {
  circle at (x, y) size sunSize color sunColor
}

scene sky {
  drawSun(400, 300)
  star(200, 150, 40)
}

animate {
  rotate 1
  pulse 0.9 1.1 2
}
`

const customTemplate = `// Shapes shared across the project
fn star(x, y, r) {
  polygon at (x, y) sides 5 radius r color #FFD166
}
`

// Scaffold stages a new project in a workspace. Nothing is written to disk.
func Scaffold(cfg Config) (*workspace.Workspace, error) {
	data, err := cfg.Marshal()
	if err != nil {
		return nil, err
	}

	ws := workspace.New()
	files := []struct {
		name string
		data []byte
	}{
		{ConfigFile, data},
		{cfg.Entry, []byte(mainTemplate)},
		{"src/shapes/custom.mflow", []byte(customTemplate)},
		{"dist/.gitkeep", nil},
	}
	for _, f := range files {
		if err := ws.Write(f.name, f.data); err != nil {
			return nil, err
		}
	}
	return ws, nil
}
