// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/youjianchi/quickPoll/client"
)

const (
	keyAPIURL       = "api_url"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyEmail        = "email"
)

// settings is the CLI's persisted session, stored as YAML. Every key can be
// overridden with QUICKPOLL_<KEY>.
type settings struct {
	v    *viper.Viper
	path string
}

func defaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "quickpoll.yaml"
	}
	return filepath.Join(home, ".config", "quickpoll", "config.yaml")
}

func loadSettings(path string) (*settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QUICKPOLL")
	for _, key := range []string{keyAPIURL, keyAccessToken, keyRefreshToken, keyEmail} {
		_ = v.BindEnv(key)
	}
	v.SetDefault(keyAPIURL, client.DefaultBaseURL)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	return &settings{v: v, path: path}, nil
}

func (s *settings) APIURL() string       { return s.v.GetString(keyAPIURL) }
func (s *settings) AccessToken() string  { return s.v.GetString(keyAccessToken) }
func (s *settings) RefreshToken() string { return s.v.GetString(keyRefreshToken) }
func (s *settings) Email() string        { return s.v.GetString(keyEmail) }

func (s *settings) SetAPIURL(url string) {
	s.v.Set(keyAPIURL, url)
}

func (s *settings) SetSession(email, accessToken, refreshToken string) {
	s.v.Set(keyEmail, email)
	s.v.Set(keyAccessToken, accessToken)
	s.v.Set(keyRefreshToken, refreshToken)
}

func (s *settings) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return os.Chmod(s.path, 0o600)
}
