package blockchain

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	whitespace         = regexp.MustCompile(`\s`)
	addressPlaceholder = regexp.MustCompile(`0x([A-Z][A-Z0-9_]*_ADDRESS)`)
)

// ScriptAllowList holds the transaction scripts the payer agrees to pay for.
// Scripts are compared with all whitespace removed.
type ScriptAllowList struct {
	scripts map[string]string
}

func NewScriptAllowList() *ScriptAllowList {
	return &ScriptAllowList{scripts: make(map[string]string)}
}

// Add allows script under name, after replacing address placeholders such as
// 0xFUNGIBLE_TOKEN_ADDRESS with the configured address.
func (l *ScriptAllowList) Add(name, script string) {
	l.scripts[normalize(resolveAddresses(script))] = name
}

// Match returns the name of the allowed script equal to script.
func (l *ScriptAllowList) Match(script string) (string, bool) {
	name, ok := l.scripts[normalize(script)]
	if !ok {
		log.Warn().Msgf("Transaction script is not allowed: %q", script)
	}
	return name, ok
}

func (l *ScriptAllowList) Len() int { return len(l.scripts) }

// LoadScriptAllowList reads every .cdc file of dir.
func LoadScriptAllowList(dir string) (*ScriptAllowList, error) {
	l := NewScriptAllowList()
	if dir == "" {
		return l, nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.cdc"))
	if err != nil {
		return nil, errors.Wrapf(err, "list scripts in %s", dir)
	}
	for _, f := range files {
		code, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "read script %s", f)
		}
		l.Add(strings.TrimSuffix(filepath.Base(f), ".cdc"), string(code))
	}
	log.Info().Msgf("Loaded %d allowed scripts from %s", l.Len(), dir)
	return l, nil
}

func normalize(script string) string {
	return whitespace.ReplaceAllString(script, "")
}

func resolveAddresses(script string) string {
	return addressPlaceholder.ReplaceAllStringFunc(script, func(placeholder string) string {
		key := strings.TrimPrefix(placeholder, "0x")
		address := viper.GetString(key)
		if address == "" {
			return placeholder
		}
		return "0x" + strings.TrimPrefix(address, "0x")
	})
}
