package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

func ParseThemeMode(s string) (ThemeMode, error) {
	switch m := ThemeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ThemeLight, ThemeDark, ThemeSystem:
		return m, nil
	default:
		return "", fmt.Errorf("unknown theme %q (use light, dark or system)", s)
	}
}

// ThemeStore persists the chosen mode.
type ThemeStore interface {
	ThemeMode(ctx context.Context) (string, error)
	SetThemeMode(ctx context.Context, mode string) error
}

// ThemeContext holds the theme preference and resolves "system" to a
// concrete light or dark choice.
type ThemeContext struct {
	store  ThemeStore
	getenv func(string) string

	mu   sync.RWMutex
	mode ThemeMode
}

func NewThemeContext(store ThemeStore, getenv func(string) string) *ThemeContext {
	return &ThemeContext{store: store, getenv: getenv, mode: ThemeSystem}
}

// Init loads the stored mode. Missing or unknown values fall back to system.
func (t *ThemeContext) Init(ctx context.Context) error {
	raw, err := t.store.ThemeMode(ctx)
	if err != nil {
		return err
	}
	mode, err := ParseThemeMode(raw)
	if err != nil {
		mode = ThemeSystem
	}

	t.mu.Lock()
	t.mode = mode
	t.mu.Unlock()
	return nil
}

func (t *ThemeContext) Mode() ThemeMode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

func (t *ThemeContext) SetMode(ctx context.Context, mode ThemeMode) error {
	if _, err := ParseThemeMode(string(mode)); err != nil {
		return err
	}
	if err := t.store.SetThemeMode(ctx, string(mode)); err != nil {
		return err
	}

	t.mu.Lock()
	t.mode = mode
	t.mu.Unlock()
	return nil
}

// Resolved returns ThemeLight or ThemeDark.
func (t *ThemeContext) Resolved() ThemeMode {
	if m := t.Mode(); m != ThemeSystem {
		return m
	}
	return SystemTheme(t.getenv)
}

func (t *ThemeContext) Close(context.Context) error {
	return nil
}

// SystemTheme guesses the terminal theme. TASKS_THEME wins; otherwise the
// background index of COLORFGBG ("fg;bg") is used, where 0 to 6 and 8 are
// dark colours. Without a hint the answer is light.
func SystemTheme(getenv func(string) string) ThemeMode {
	if m, err := ParseThemeMode(getenv("TASKS_THEME")); err == nil && m != ThemeSystem {
		return m
	}

	if v := getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return ThemeDark
			}
			return ThemeLight
		}
	}

	return ThemeLight
}
