package config

import "strings"

// log.level -> LW_LOG_LEVEL, editor.allow_empty -> LW_EDITOR_ALLOW_EMPTY
var envReplacer = strings.NewReplacer(".", "_")
