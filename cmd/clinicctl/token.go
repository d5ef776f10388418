package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/urfave/cli"

	"github.com/wolfman30/clinic-booking/internal/http/middleware"
)

var TokenCmd = cli.Command{
	Name:  "token",
	Usage: "Signs an admin token for the agenda and calendar endpoints",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:   "secret",
			Usage:  "HMAC secret shared with the API",
			EnvVar: "ADMIN_JWT_SECRET",
		},
		&cli.StringFlag{
			Name:  "subject",
			Usage: "Who the token is issued to",
			Value: "admin",
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "Token lifetime",
			Value: 30 * 24 * time.Hour,
		},
	},
	Action: signToken,
}

func signToken(c *cli.Context) error {
	secret := c.String("secret")
	if secret == "" {
		return errors.New("--secret or ADMIN_JWT_SECRET is required")
	}
	now := time.Now()
	token, err := middleware.SignAdminToken(secret, c.String("subject"), jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.Duration("ttl"))),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
