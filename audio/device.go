package audio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// PickInteractive presents an interactive device picker and returns the index
// of the selected device. If only one device is available, it returns 0
// without prompting.
func PickInteractive(ctx Context) (int, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return -1, fmt.Errorf("enumerating devices: %w", err)
	}

	if len(devices) == 0 {
		return -1, ErrNoDevices
	}

	if len(devices) == 1 {
		return 0, nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return -1, fmt.Errorf("setting raw mode: %w", err)
	}

	defer term.Restore(fd, oldState)

	cursor := 0
	renderList := func() {
		fmt.Print("\r\x1b[J")
		fmt.Print("Select capture device (↑/↓, Enter to confirm):\r\n\r\n")
		for i, d := range devices {
			tag := ""
			if d.Monitor {
				tag = " \x1b[2m[monitor]\x1b[0m"
			}
			if i == cursor {
				fmt.Printf("  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, tag)
			} else {
				fmt.Printf("    %s%s\r\n", d.Name, tag)
			}
		}
	}

	renderList()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return -1, fmt.Errorf("reading input: %w", err)
		}

		if n == 1 {
			switch buf[0] {
			case 13: // Enter
				fmt.Print("\r\n")
				return cursor, nil
			case 3, 'q': // Ctrl+C
				fmt.Print("\r\n")
				return -1, fmt.Errorf("device selection cancelled")
			case 'j': // vim down
				if cursor < len(devices)-1 {
					cursor++
				}
			case 'k': // vim up
				if cursor > 0 {
					cursor--
				}
			}
		} else if n == 3 && buf[0] == 0x1b && buf[1] == '[' {
			switch buf[2] {
			case 'A': // Up arrow
				if cursor > 0 {
					cursor--
				}
			case 'B': // Down arrow
				if cursor < len(devices)-1 {
					cursor++
				}
			}
		}

		lines := len(devices) + 2
		fmt.Printf("\x1b[%dA", lines)
		renderList()
	}
}
