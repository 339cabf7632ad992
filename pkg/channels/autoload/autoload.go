// Package autoload registers all built-in channel factories through their
// init functions. Import it for side effects from the main package.
package autoload

import (
	_ "deskpilot/pkg/channels/telegram"
	_ "deskpilot/pkg/channels/web"
)
