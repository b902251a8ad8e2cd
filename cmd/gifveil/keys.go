package main

import (
	"encoding/pem"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gifveil/gifveil/internal/keystore"
	"github.com/gifveil/gifveil/internal/ui"
)

// PassphraseEnvVar supplies the passphrase non-interactively
const PassphraseEnvVar = "GIFVEIL_PASSPHRASE"

// Command flags
var (
	exportOutput string
	exportPEM    bool
)

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(importKeyCmd)
	rootCmd.AddCommand(exportKeyCmd)

	exportKeyCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Write the key to a file instead of stdout")
	exportKeyCmd.Flags().BoolVar(&exportPEM, "pem", false, "PEM-encode the key")
}

// readPassphrase returns GIFVEIL_PASSPHRASE or prompts on the terminal.
// With confirm set the passphrase is asked for twice.
func readPassphrase(prompt string, confirm bool) (string, error) {
	if p := os.Getenv(PassphraseEnvVar); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", PassphraseEnvVar)
	}

	read := func(prompt string) (string, error) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase: %w", err)
		}
		return string(b), nil
	}

	pass, err := read(prompt)
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	if confirm {
		again, err := read("Confirm passphrase: ")
		if err != nil {
			return "", err
		}
		if again != pass {
			return "", fmt.Errorf("passphrases do not match")
		}
	}
	return pass, nil
}

// registerCmd implements the 'register' command
var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a user with a new key pair",
	Long: `Create a user with a fresh RSA key pair.

The private key is encrypted with a key derived from the passphrase
(argon2id) and stored in the keys directory next to the public key.
The username and key fingerprint are recorded in the config file.

Share the public key with 'gifveil export-key' so others can encrypt
for you.`,
	Example: `  # Prompt for a passphrase
  gifveil register alice

  # Non-interactive
  GIFVEIL_PASSPHRASE=secret gifveil register alice`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	name := args[0]

	reg, store, err := openStore()
	if err != nil {
		return err
	}

	pass, err := readPassphrase(fmt.Sprintf("Passphrase for %s: ", name), true)
	if err != nil {
		return err
	}

	user, err := store.Register(name, pass)
	if err != nil {
		ui.PrintFailure(os.Stdout, "Registration failed", err, []string{
			"Usernames start with a letter or digit and may contain . _ -",
			"List existing users: gifveil users",
		})
		return err
	}
	if err := saveRegistry(reg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	ui.PrintSuccess(os.Stdout, "User registered", map[string]string{
		"User":        name,
		"Fingerprint": user.KeyFingerprint,
		"Keys":        store.Dir(),
	})
	return nil
}

// usersCmd implements the 'users' command
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users and imported recipients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		reg, store, err := openStore()
		if err != nil {
			return err
		}
		return printUsers(os.Stdout, store.Users(), reg.RecipientNames(), func(name string) (string, string) {
			if u := reg.GetUser(name); u != nil {
				return u.KeyFingerprint, u.Created.Format("2006-01-02")
			}
			r := reg.GetRecipient(name)
			return r.KeyFingerprint, r.Imported.Format("2006-01-02")
		}, store.Dir())
	},
}

func printUsers(w io.Writer, users, recipients []string, lookup func(string) (string, string), dir string) error {
	if len(users) == 0 && len(recipients) == 0 {
		fmt.Fprintln(w, "No users registered. Create one with: gifveil register <username>")
		return nil
	}

	section := func(title string, names []string) {
		if len(names) == 0 {
			return
		}
		fmt.Fprintln(w, ui.SectionTitleStyle.Render(title))
		for _, name := range names {
			fp, date := lookup(name)
			fmt.Fprintf(w, "  %-20s %s  %s\n", name, fp, date)
		}
		fmt.Fprintln(w)
	}
	section("Users", users)
	section("Recipients", recipients)
	fmt.Fprintf(w, "Keys directory: %s\n", dir)
	return nil
}

// importKeyCmd implements the 'import-key' command
var importKeyCmd = &cobra.Command{
	Use:   "import-key <name> <public-key-file>",
	Short: "Import a recipient's public key",
	Long: `Import an RSA public key so files can be encrypted for its owner.

The key file may be PKIX DER or PEM ("PUBLIC KEY" block), as written by
'gifveil export-key'.`,
	Example: `  gifveil import-key bob bob_public.der`,
	Args:    cobra.ExactArgs(2),
	RunE:    runImportKey,
}

func runImportKey(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	name, path := args[0], args[1]

	reg, store, err := openStore()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}
	der := decodeKeyFile(data)

	fp, err := store.ImportPublicKey(name, der)
	if err != nil {
		ui.PrintFailure(os.Stdout, "Import failed", err, []string{
			"The key must be an RSA public key in PKIX DER or PEM form",
			"A registered user's key cannot be replaced by an import",
		})
		return err
	}
	if err := saveRegistry(reg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	ui.PrintSuccess(os.Stdout, "Public key imported", map[string]string{
		"Recipient":   name,
		"Fingerprint": fp,
	})
	return nil
}

// decodeKeyFile unwraps a PEM public key block; anything else is taken as DER
func decodeKeyFile(data []byte) []byte {
	if block, _ := pem.Decode(data); block != nil && strings.HasSuffix(block.Type, "PUBLIC KEY") {
		return block.Bytes
	}
	return data
}

// exportKeyCmd implements the 'export-key' command
var exportKeyCmd = &cobra.Command{
	Use:   "export-key <name>",
	Short: "Write a user's public key",
	Example: `  # DER to a file
  gifveil export-key alice -o alice_public.der

  # PEM to stdout
  gifveil export-key alice --pem`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		_, store, err := openStore()
		if err != nil {
			return err
		}
		der, err := store.ExportPublicKey(args[0])
		if err != nil {
			return err
		}
		if exportPEM {
			der = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
		}
		if exportOutput == "" {
			if !exportPEM && term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("refusing to write binary key to a terminal; use --pem or --out")
			}
			_, err = os.Stdout.Write(der)
			return err
		}
		if err := os.WriteFile(exportOutput, der, 0o644); err != nil {
			return fmt.Errorf("failed to write key: %w", err)
		}
		fmt.Printf("Public key for %s (%s) written to %s\n", args[0], keystore.Fingerprint(decodeKeyFile(der)), exportOutput)
		return nil
	},
}
