package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/epilepsywatch/riskmon/internal/server"
)

type HashPasswordCmd struct{}

func (h *HashPasswordCmd) Run(ctx context.Context, globals *Globals) error {
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	confirm, err := promptPassword("Confirm:  ")
	if err != nil {
		return err
	}

	if password != confirm {
		return errors.New("passwords do not match")
	}

	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hash, err := server.HashPassword(password)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	fmt.Println("Set this as ADMIN_PASSWORD_HASH in the server environment.")

	return nil
}
