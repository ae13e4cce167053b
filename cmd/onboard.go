package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdevalley/concierge/internal/calendar"
	"github.com/verdevalley/concierge/internal/config"
)

var onboardCalendar bool

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration and Google Calendar access",
	RunE:  runOnboard,
}

func init() {
	onboardCmd.Flags().BoolVar(&onboardCalendar, "calendar", false, "Run the Google Calendar OAuth flow")
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	if onboardCalendar {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := authorizeCalendar(cfg); err != nil {
			return err
		}
	}

	fmt.Printf("\n%s concierge is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your API keys and Telegram token to %s\n", cfgPath)
	fmt.Println("  2. Authorize calendar access: concierge onboard --calendar")
	fmt.Println("  3. Load the guest guide: concierge ingest path/to/guest_guide.md")
	fmt.Println("  4. Start the bot: concierge serve")
	return nil
}

// authorizeCalendar runs a manual OAuth code exchange and saves the token.
func authorizeCalendar(cfg *config.Config) error {
	oauthConfig, err := calendar.LoadOAuthConfig(cfg.Calendar.CredentialsFile)
	if err != nil {
		return err
	}
	// Out-of-band style flow: the bot usually runs on a headless host.
	oauthConfig.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"

	fmt.Println("Open this URL in a browser and authorize access:")
	fmt.Println("  " + oauthConfig.AuthCodeURL("state-token"))
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}

	token, err := oauthConfig.Exchange(context.Background(), strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := calendar.SaveToken(cfg.Calendar.TokenFile, token); err != nil {
		return err
	}
	fmt.Printf("✓ Calendar token saved to %s\n", cfg.Calendar.TokenFile)
	return nil
}
