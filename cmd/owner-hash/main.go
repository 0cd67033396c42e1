package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/security"
)

// owner-hash prints an argon2id hash for WIREBAZAAR_OWNER_PASSWORD_HASH. The
// password is read from the first line of stdin.
func main() {
	check := flag.String("verify", "", "existing hash to check the password against instead of hashing")
	flag.Parse()

	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "owner-hash", Output: os.Stderr})
	_ = godotenv.Load()

	var params config.PasswordConfig
	if err := envconfig.Process(config.EnvPrefix, &params); err != nil {
		logg.Error(ctx, "failed to load argon2 parameters", err)
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		logg.Error(ctx, "failed to read password", err)
		os.Exit(1)
	}
	password := strings.TrimRight(line, "\r\n")

	if *check != "" {
		ok, err := security.VerifyPassword(password, *check)
		if err != nil {
			logg.Error(ctx, "malformed hash", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("mismatch")
			os.Exit(2)
		}
		if stale, _ := security.NeedsRehash(*check, params); stale {
			fmt.Println("match (hash uses weaker argon2 settings than configured; rehash recommended)")
			return
		}
		fmt.Println("match")
		return
	}

	hash, err := security.HashPassword(password, params)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
