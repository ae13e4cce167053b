package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdevalley/concierge/internal/calendar"
	"github.com/verdevalley/concierge/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show concierge status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s concierge Status\n\n", logo)

	fmt.Printf("Config:     %s %s\n", cfgPath, existsMark(cfgPath))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Model:      %s\n", cfg.Anthropic.Model)
	fmt.Printf("Store:      %s\n", cfg.Store.Backend)
	fmt.Printf("Telegram:   %s\n", enabledMark(cfg.Telegram.Enabled && cfg.Telegram.Token != ""))
	fmt.Printf("Anthropic:  %s\n", enabledMark(cfg.Anthropic.APIKey != ""))
	fmt.Printf("OpenAI:     %s\n", enabledMark(cfg.OpenAI.APIKey != ""))
	fmt.Printf("Calendar:   credentials %s, token %s\n",
		existsMark(cfg.Calendar.CredentialsFile), existsMark(cfg.Calendar.TokenFile))

	props, err := calendar.LoadProperties(cfg.Calendar.PropertiesFile)
	if err != nil {
		fmt.Printf("Properties: ✗ (%s)\n", cfg.Calendar.PropertiesFile)
		return nil
	}
	fmt.Println("Properties:")
	for _, name := range props.Names() {
		fmt.Printf("  ✓ %s\n", name)
	}
	return nil
}

func existsMark(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "✓"
	}
	return "✗"
}

func enabledMark(ok bool) string {
	if ok {
		return "✓ configured"
	}
	return "✗ not configured"
}
