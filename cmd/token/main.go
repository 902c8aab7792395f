// Command token issues an access token for the API.
//
//	token <user_id> <admin|hr_manager|staff>
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dairy-admin/dairy-hr-backend/internal/config"
	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/jwt"
)

func main() {
	usage := fmt.Sprintf("usage: token <user_id> <%s>", jwt.RoleNames())
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	role, err := jwt.ParseRole(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	token, expiresAt, err := JWTService.GenerateAccessToken(os.Args[1], role)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	fmt.Println(token)
}
