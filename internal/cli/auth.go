package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mlevkov/pagekeeper/internal/common"
)

// getSimpleText and getPassphrase are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in
// tests.
var getSimpleText = GetSimpleText
var getPassphrase = GetPassphrase
var getYesNo = GetYesNo

// Login authenticates the session. When an encrypted key is cached locally
// it asks for the passphrase; otherwise it imports the PEM key file (from
// the configured path or an interactive prompt), runs the token exchange,
// and loads the working copy from the publish branch.
func (a *App) Login(ctx context.Context) error {
	err := a.loginFromCache(ctx)
	if errors.Is(err, common.ErrLocalDataNotAvailable) {
		err = a.loginWithKeyFile(ctx)
	}
	if err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	if err := a.reload(ctx); err != nil {
		fmt.Println("Loading site content failed:", err)
		return err
	}

	a.loggedIn = true
	fmt.Printf("Logged in. %d posts, %d galleries.\n", len(a.content.Posts), len(a.content.Galleries))
	return nil
}

func (a *App) loginFromCache(ctx context.Context) error {
	passphrase, err := getPassphrase(os.Stdout, "Enter cache passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	return a.auth.LoginFromCache(ctx, passphrase)
}

func (a *App) loginWithKeyFile(ctx context.Context) error {
	path := a.config.KeyPath
	if path == "" {
		var err error
		path, err = getSimpleText(a.reader, "Enter path to the App private key (PEM)", os.Stdout)
		if err != nil {
			return err
		}
	}
	return a.auth.LoginWithKeyFile(ctx, path)
}

// CacheKey stores the session's private key in the encrypted local cache.
// The first use asks for an explicit risk acknowledgement.
func (a *App) CacheKey(ctx context.Context) error {
	acked, err := a.auth.RiskAcknowledged(ctx)
	if err != nil {
		return err
	}
	if !acked {
		ok, err := getYesNo(a.reader,
			"The cached key can publish to your site. Anyone with access to this "+
				"machine and your passphrase can use it. Cache it anyway?", os.Stdout)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Key not cached.")
			return nil
		}
		if err := a.auth.AcknowledgeRisk(ctx); err != nil {
			return err
		}
	}

	passphrase, err := getPassphrase(os.Stdout, "Choose a cache passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	if err := a.auth.CacheKey(ctx, passphrase); err != nil {
		return err
	}
	fmt.Println("Key cached.")
	return nil
}

// Logout drops the session token and credential. It asks whether the local
// key cache should be wiped as well.
func (a *App) Logout(ctx context.Context) error {
	wipe, err := getYesNo(a.reader, "Also wipe the cached key?", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.Logout(ctx, wipe); err != nil {
		return err
	}
	a.loggedIn = false
	fmt.Println("Logged out.")
	return nil
}
