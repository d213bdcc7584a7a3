package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	script, ok := completionScript(shell)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
	fmt.Print(script)
}

func completionScript(shell string) (string, bool) {
	switch shell {
	case "bash":
		return bashCompletion, true
	case "zsh":
		return zshCompletion, true
	case "fish":
		return fishCompletion, true
	}
	return "", false
}

const bashCompletion = `_catospher() {
    local cur prev words cword
    _init_completion || return

    local commands="encrypt decrypt inspect state keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    case "$prev" in
        -kind)
            COMPREPLY=($(compgen -W "pin passphrase" -- "$cur"))
            return
            ;;
        -kdf)
            COMPREPLY=($(compgen -W "PBKDF2-SHA256 ARGON2ID" -- "$cur"))
            return
            ;;
        -copy)
            COMPREPLY=($(compgen -W "credential envelope" -- "$cur"))
            return
            ;;
        -in|-out|-credential-out)
            _filedir
            return
            ;;
    esac

    local cmd="${words[1]}"
    case "$cmd" in
        encrypt)
            COMPREPLY=($(compgen -W "-kind -length -kdf -iter -text -in -out -credential-out -keyring -copy" -- "$cur"))
            ;;
        decrypt)
            COMPREPLY=($(compgen -W "-in -out -copy -no-keyring" -- "$cur"))
            ;;
        inspect)
            COMPREPLY=($(compgen -W "-in" -- "$cur"))
            ;;
        state)
            if [[ $cword -eq 2 ]]; then
                COMPREPLY=($(compgen -W "show clear" -- "$cur"))
            else
                COMPREPLY=($(compgen -W "-reveal -force" -- "$cur"))
            fi
            ;;
        keyring)
            COMPREPLY=($(compgen -W "status delete" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _catospher catospher
`

const zshCompletion = `#compdef catospher

_catospher() {
    local -a commands
    commands=(
        'encrypt:Encrypt text under a freshly generated credential'
        'decrypt:Decrypt an envelope with its credential'
        'inspect:Show envelope parameters without decrypting'
        'state:Show or clear the saved session state'
        'keyring:Manage credentials in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'catospher commands' commands
            ;;
        args)
            case "${words[2]}" in
                encrypt)
                    _arguments \
                        '-kind[Credential kind]:kind:(pin passphrase)' \
                        '-length[Passphrase length]:length:' \
                        '-kdf[Key derivation function]:kdf:(PBKDF2-SHA256 ARGON2ID)' \
                        '-iter[KDF iterations]:iterations:' \
                        '-text[Plaintext to encrypt]:text:' \
                        '-in[Read plaintext from file]:file:_files' \
                        '-out[Write envelope to file]:file:_files' \
                        '-credential-out[Write credential to file]:file:_files' \
                        '-keyring[Save credential in OS keyring]' \
                        '-copy[Copy to clipboard]:what:(credential envelope)'
                    ;;
                decrypt)
                    _arguments \
                        '-in[Read envelope from file]:file:_files' \
                        '-out[Write plaintext to file]:file:_files' \
                        '-copy[Copy plaintext to clipboard]' \
                        '-no-keyring[Do not look up the keyring]'
                    ;;
                inspect)
                    _arguments '-in[Read envelope from file]:file:_files'
                    ;;
                state)
                    _arguments \
                        '1:subcommand:(show clear)' \
                        '-reveal[Show secrets in clear]' \
                        '-force[Clear without confirmation]'
                    ;;
                keyring)
                    _values 'subcommand' status delete
                    ;;
                help)
                    _describe -t commands 'catospher commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_catospher "$@"
`

const fishCompletion = `# catospher fish completions

set -l commands encrypt decrypt inspect state keyring help completion

complete -c catospher -f

# Commands
complete -c catospher -n "not __fish_seen_subcommand_from $commands" -a encrypt -d 'Encrypt under a new credential'
complete -c catospher -n "not __fish_seen_subcommand_from $commands" -a decrypt -d 'Decrypt an envelope'
complete -c catospher -n "not __fish_seen_subcommand_from $commands" -a inspect -d 'Show envelope parameters'
complete -c catospher -n "not __fish_seen_subcommand_from $commands" -a state -d 'Show or clear saved state'
complete -c catospher -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage credentials in OS keyring'
complete -c catospher -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c catospher -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# encrypt flags
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o kind -xa "pin passphrase" -d 'Credential kind'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o length -x -d 'Passphrase length'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o kdf -xa "PBKDF2-SHA256 ARGON2ID" -d 'Key derivation function'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o iter -x -d 'KDF iterations'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o text -x -d 'Plaintext'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o in -rF -d 'Plaintext file'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o out -rF -d 'Envelope file'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o credential-out -rF -d 'Credential file'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o keyring -d 'Save credential in keyring'
complete -c catospher -n "__fish_seen_subcommand_from encrypt" -o copy -xa "credential envelope" -d 'Copy to clipboard'

# decrypt flags
complete -c catospher -n "__fish_seen_subcommand_from decrypt" -o in -rF -d 'Envelope file'
complete -c catospher -n "__fish_seen_subcommand_from decrypt" -o out -rF -d 'Plaintext file'
complete -c catospher -n "__fish_seen_subcommand_from decrypt" -o copy -d 'Copy plaintext to clipboard'
complete -c catospher -n "__fish_seen_subcommand_from decrypt" -o no-keyring -d 'Skip keyring lookup'

# inspect flags
complete -c catospher -n "__fish_seen_subcommand_from inspect" -o in -rF -d 'Envelope file'

# state subcommands
complete -c catospher -n "__fish_seen_subcommand_from state" -a "show clear"
complete -c catospher -n "__fish_seen_subcommand_from state" -o reveal -d 'Show secrets in clear'
complete -c catospher -n "__fish_seen_subcommand_from state" -o force -d 'Clear without confirmation'

# keyring subcommands
complete -c catospher -n "__fish_seen_subcommand_from keyring" -a "status delete"

# help completions
complete -c catospher -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c catospher -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
