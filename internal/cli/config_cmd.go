// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/halvard/skribe/internal/config"
)

// HandleConfig implements the "config" command.
//
// Subcommands:
//
//	show           Print all settings (default)
//	get KEY        Print one setting
//	set KEY VALUE  Change one setting and save
//	path           Print the config file location
//	encrypt-key    Prompt for the API key and store it encrypted
func HandleConfig(args Args) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "show":
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, key := range config.Keys() {
			val, _ := cfg.Get(key)
			fmt.Printf("%s = %s\n", commandStyle.Render(key), val)
		}
		if cfg.Provider.APIKey != "" {
			fmt.Printf("%s = %s\n", commandStyle.Render("provider.api_key"), maskSecret(cfg.Provider.APIKey))
		}
		return nil

	case "get":
		if len(args.Rest) < 1 {
			return fmt.Errorf("usage: skribe config get KEY")
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		val, err := cfg.Get(args.Rest[0])
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil

	case "set":
		if len(args.Rest) < 2 {
			return fmt.Errorf("usage: skribe config set KEY VALUE")
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Set(args.Rest[0], strings.Join(args.Rest[1:], " ")); err != nil {
			return err
		}
		if err := saveKeepingEncryptedKey(cfg, path); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("Saved " + args.Rest[0]))
		return nil

	case "path":
		fmt.Println(path)
		return nil

	case "encrypt-key":
		fmt.Print("API key (input hidden): ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key := strings.TrimSpace(string(raw))
		if key == "" {
			return fmt.Errorf("empty key")
		}

		ks, err := config.OpenKeystore()
		if err != nil {
			return err
		}
		enc, err := ks.EncryptString(key)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.Provider.APIKey = enc
		if err := config.Save(cfg, path); err != nil {
			return err
		}
		fmt.Println(commandStyle.Render("API key stored encrypted."))
		return nil

	default:
		return fmt.Errorf("unknown config subcommand %q", args.Subcommand)
	}
}

// saveKeepingEncryptedKey re-reads the on-disk API key before saving so a
// plaintext key decrypted at load time is not written back in the clear.
func saveKeepingEncryptedKey(cfg *config.Config, path string) error {
	if stored, err := rawAPIKey(path); err == nil && stored != "" {
		cfg.Provider.APIKey = stored
	}
	return config.Save(cfg, path)
}

// rawAPIKey extracts the api_key value as written in the file, encrypted
// form included, without decrypting it.
func rawAPIKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "api_key") {
			_, val, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			return strings.Trim(strings.TrimSpace(val), `"`), nil
		}
	}
	return "", nil
}

// maskSecret shows only enough of a secret to recognize it.
func maskSecret(s string) string {
	if strings.HasPrefix(s, "ENC:") {
		return "ENC:****"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
