// forum/utils/utils.go
package utils

import "encoding/base64"

// Grey 150x150 placeholder used as the reserved default avatar.
const defaultAvatarBase64 = `iVBORw0KGgoAAAANSUhEUgAAAJYAAACWCAYAAAA8AXHiAAAAAXNSR0IArs4c6QAAAARnQU1BAACxjwv8YQUAAAAJcEhZcwAADsMAAA7DAcdvqGQAAARJSURBVHhe7d3NbhoxEIXh7zcr8QZ6g55gT3AbR2AnKJHQaPIVO3fBIHkyE/M306FnoEmqgP5fT4vL6k+l6vW373O/X1f/vT4v3/f9+n79uQCAAQMGDBgwYMGAAQMGDBgwYMCAAAECAwYMGDBgwIABAwYMGDBgwIABAgQGDBgwYMGAAQMGDBgwYMCAAAECI4zL9Y/XFwsGDBgwYMCAAAECI4zD1Wf5pL5YMGDAgAEDBggQGGFsvV7Xn8tfrj8/LhYMGLC/+Z/f337P/v7xMez3LzaMgwEDBgwYMGDAgAEDBgwYMGDAgAABAgMGDBgwYMGAAQMGDBgwYMCAAAECAwYMGDBgwIABAwYMGDBgwIABAgQIjDAu1x+vt2DAgAEDBgwQIBCy5Xp9P9Of2zZgwIABAwYMECCw5fo5v1gwYMCgGRi3f/v7PzDuv/Z/Zwx7v1gwYMCgGRiX68/z+mV+Wf3ZMgYMGDBgwIABAwQIjDAu159yBgwYMGDAgAABAse1/pL1ZcKAAQMGDBgwYMCAAAECI4zL9U/29YIBg/8y7L/x+h+3/yOswYABAwYMGDBgwIABAwYMGDBgwIABAgQGDBgwYMGAAQMGDBgwYMCAAAECBAYMGDBgwIABAwYMGDBgwIABAgQIjDAu15/l/bJgwIABA/9l+J9bNxgzYMCgGRiX65/s5/Jl3aB9/zPs/y5rx4ABAwYMGDBgwIABAwYMGDBgwIABAgQGDBgwYMGAAQMGDBgwYMCAAAECBAYMGDBgwIABAwYMGDBgwIABAgQIjDAu15/l9YpBwwYMGDCowLj8v64f5f2yYMCAAYO6gXHZf53+3LpBM2DAgEEdwLhc/7Jg0IABAwYMGDBgQICgXVZ/+t/v8/pX+bJg0IABAwYMGDCowbn8/+t7+bP+smHQgEEdwLjcf7L+kmHQgEEdwLj8v+v35cu6QTNg0IBBHcC4XP+yYNCgAYO6gXHZf51+vK4bNCDQgEEdwLj8//V6Xb9c/0m6QdCAAQMGDBgwYMAAAQIjDMv15/l9WTAgQGCE8frj8n8OGBCowLhcf7L+EmFAQICgXVZ/+t/vAwYEijAu1/+sf1kwIEBgYDy+X/+v/3+zYECgAcOy/pL1ZcKAAIECI4zD1Wd5WTAgQGCEsXV5XV/Wf7JgQIABA9v1+r+v/3/dYMDAgAEDBgwYMGDAgAEDBgwYMGDAgAABAgMGDBgwYMGAAQMGDBgwYMCAAAECAwYMGDBgwIABAwYMGDBgwIABAgQGDBgwYMGAAQMGDBgwYMCAAAECI4zL9Wd5vVgwAAAAAElFTkSuQmCC`

// DefaultAvatar returns the bytes of the built-in default avatar image.
func DefaultAvatar() ([]byte, error) {
	return base64.StdEncoding.DecodeString(defaultAvatarBase64)
}
