// Command admintoken prints an admin bearer token signed with ADMIN_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gogotex/docshare/internal/config"
	"github.com/gogotex/docshare/internal/tokens"
	"github.com/gogotex/docshare/pkg/logger"
)

func main() {
	subject := flag.String("sub", "admin", "subject claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (default ADMIN_TOKEN_TTL)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Admin.JWTSecret == "" {
		logger.Fatalf("ADMIN_JWT_SECRET is not set")
	}
	lifetime := cfg.Admin.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	tok, err := tokens.IssueAdminToken(cfg.Admin.JWTSecret, *subject, lifetime)
	if err != nil {
		logger.Fatalf("issue token: %v", err)
	}
	fmt.Fprintln(os.Stdout, tok)
}
