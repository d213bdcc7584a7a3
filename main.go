package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/catospher/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "encrypt":
		runEncrypt(ctx, os.Args[2:])
	case "decrypt":
		runDecrypt(ctx, os.Args[2:])
	case "inspect":
		runInspect(ctx, os.Args[2:])
	case "state":
		runState(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runEncrypt(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("encrypt", flag.ExitOnError)
	var opts cmd.EncryptOptions
	fs.StringVar(&opts.Kind, "kind", "", "Credential kind: pin or passphrase")
	fs.IntVar(&opts.Length, "length", 0, "Passphrase length (implies -kind passphrase)")
	fs.StringVar(&opts.KDF, "kdf", "", "Key derivation function")
	fs.IntVar(&opts.Iterations, "iter", 0, "KDF iteration count")
	fs.StringVar(&opts.Text, "text", "", "Plaintext to encrypt")
	fs.StringVar(&opts.InFile, "in", "", "Read plaintext from file")
	fs.StringVar(&opts.OutFile, "out", "", "Write envelope to file")
	fs.StringVar(&opts.CredentialOut, "credential-out", "", "Write credential to file")
	fs.BoolVar(&opts.Keyring, "keyring", false, "Save credential in OS keyring")
	fs.StringVar(&opts.Copy, "copy", "", "Copy credential or envelope to clipboard")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	// A trailing argument is taken as the plaintext
	if opts.Text == "" && fs.NArg() > 0 {
		opts.Text = fs.Arg(0)
	}

	cmd.Encrypt(ctx, opts)
}

func runDecrypt(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("decrypt", flag.ExitOnError)
	var opts cmd.DecryptOptions
	fs.StringVar(&opts.InFile, "in", "", "Read envelope from file")
	fs.StringVar(&opts.OutFile, "out", "", "Write plaintext to file")
	fs.BoolVar(&opts.Copy, "copy", false, "Copy plaintext to clipboard")
	fs.BoolVar(&opts.NoKeyring, "no-keyring", false, "Do not look up the keyring")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if opts.InFile == "" && fs.NArg() > 0 {
		opts.InFile = fs.Arg(0)
	}

	cmd.Decrypt(ctx, opts)
}

func runInspect(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	in := fs.String("in", "", "Read envelope from file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	path := *in
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	cmd.Inspect(ctx, path)
}

func runState(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: catospher state <show|clear>")
		os.Exit(1)
	}

	switch args[0] {
	case "show":
		fs := flag.NewFlagSet("state show", flag.ExitOnError)
		reveal := fs.Bool("reveal", false, "Show secrets in clear")
		if err := fs.Parse(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		cmd.StateShow(ctx, *reveal)
	case "clear":
		fs := flag.NewFlagSet("state clear", flag.ExitOnError)
		force := fs.Bool("force", false, "Clear without confirmation")
		if err := fs.Parse(args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		cmd.StateClear(ctx, *force)
	default:
		fmt.Fprintf(os.Stderr, "Unknown state subcommand: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: catospher state <show|clear>")
		os.Exit(1)
	}
}

func runKeyring(_ context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: catospher keyring <status|delete> <fingerprint>")
		os.Exit(1)
	}

	switch args[0] {
	case "status":
		cmd.KeyringStatus(args[1])
	case "delete":
		cmd.KeyringDelete(args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring subcommand: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: catospher keyring <status|delete> <fingerprint>")
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: catospher completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("catospher - Encrypt short secrets under a generated PIN or passphrase")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  catospher <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  encrypt     Encrypt text under a freshly generated credential")
	fmt.Println("  decrypt     Decrypt an envelope with its credential")
	fmt.Println("  inspect     Show envelope parameters without decrypting")
	fmt.Println("  state       Show or clear the saved session state")
	fmt.Println("  keyring     Manage credentials in OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  catospher encrypt \"Hello World\"              # Encrypt under an 8-digit PIN")
	fmt.Println("  catospher encrypt -kind passphrase -in note  # Encrypt a file under a passphrase")
	fmt.Println("  catospher decrypt -in envelope.json          # Decrypt, prompting for the credential")
	fmt.Println("  catospher inspect envelope.json              # Show KDF and sizes")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  CATOSPHER_CREDENTIAL  Credential for decrypt (skips the prompt)")
	fmt.Println("  CATOSPHER_CONFIG      Path to a JSON config file")
	fmt.Println()
	fmt.Println("Use 'catospher help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "encrypt":
		fmt.Println("catospher encrypt [flags] [<text>]")
		fmt.Println()
		fmt.Println("Encrypts text under a freshly generated credential and prints a JSON envelope.")
		fmt.Println("Text is taken from -text, the first argument, -in, or stdin, in that order.")
		fmt.Println("Surrounding whitespace is trimmed; empty input is refused.")
		fmt.Println("The credential is printed to stderr unless -credential-out is given.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -kind <pin|passphrase>   Credential kind (default pin)")
		fmt.Println("  -length <n>              Passphrase length (default 12)")
		fmt.Println("  -kdf <id>                PBKDF2-SHA256 (default) or ARGON2ID")
		fmt.Println("  -iter <n>                KDF iteration count")
		fmt.Println("  -in, -out <file>         Read plaintext / write envelope")
		fmt.Println("  -credential-out <file>   Write credential to file (not stdout)")
		fmt.Println("  -keyring                 Save credential in OS keyring")
		fmt.Println("  -copy <what>             Copy credential or envelope to clipboard")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  catospher encrypt \"Hello World\"")
		fmt.Println("  echo secret | catospher encrypt -kind passphrase -length 20 -out env.json")
	case "decrypt":
		fmt.Println("catospher decrypt [-in <file>] [-out <file>] [-copy] [-no-keyring]")
		fmt.Println()
		fmt.Println("Decrypts an envelope. The credential is taken from CATOSPHER_CREDENTIAL,")
		fmt.Println("then from the OS keyring, then from an interactive prompt.")
		fmt.Println("A wrong credential and a corrupted envelope give the same error.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  catospher decrypt -in env.json")
		fmt.Println("  CATOSPHER_CREDENTIAL=01234567 catospher decrypt < env.json")
	case "inspect":
		fmt.Println("catospher inspect [-in <file>]")
		fmt.Println()
		fmt.Println("Shows version, KDF, iterations, sizes and fingerprint of an envelope.")
		fmt.Println("Does not require a credential.")
	case "state":
		fmt.Println("catospher state show [-reveal]")
		fmt.Println("catospher state clear [-force]")
		fmt.Println()
		fmt.Println("Shows or clears the last saved session. Saving is off unless")
		fmt.Println("CATOSPHER_PERSIST_STATE=true; the state file holds secrets in clear.")
		fmt.Println("Secrets are masked by 'show' unless -reveal is given.")
	case "keyring":
		fmt.Println("catospher keyring <status|delete> <fingerprint>")
		fmt.Println()
		fmt.Println("Manages credentials saved with 'encrypt -keyring'.")
		fmt.Println("The fingerprint is printed by 'catospher inspect'.")
	case "completion":
		fmt.Println("catospher completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(catospher completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(catospher completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  catospher completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
