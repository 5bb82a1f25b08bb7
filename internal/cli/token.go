package cli

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/gig-booking/internal/utils"
)

// tokenOutput is what `gigctl token` prints.
type tokenOutput struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	ProfileID   string    `json:"profile_id"`
}

func newTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		profile string
		ttlMin  int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		Long: `Mint an HS256 access token for a profile, signed with JWT_SECRET.

Profiles and credentials are owned by an external identity provider; this
command only exists so operators can exercise the API locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profile == "" {
				return errors.New("--profile is required")
			}
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if ttlMin <= 0 {
				ttlMin = cfg.AccessTTLMin
			}
			tok, err := utils.NewAccessToken(cfg.JWTSecret, profile, time.Duration(ttlMin)*time.Minute)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tokenOutput{AccessToken: tok.Token, ExpiresAt: tok.Exp, ProfileID: profile})
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "profile id placed in the sub claim")
	cmd.Flags().IntVar(&ttlMin, "ttl", 0, "lifetime in minutes (default ACCESS_TOKEN_TTL_MIN)")
	return cmd
}
