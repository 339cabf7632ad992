// Package autoload registers all built-in planner providers via their
// init() functions. Import it for side effects only.
package autoload

import (
	_ "deskpilot/pkg/planner/gemini"
	_ "deskpilot/pkg/planner/ollama"
	_ "deskpilot/pkg/planner/openaip"
)
