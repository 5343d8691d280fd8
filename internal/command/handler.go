package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/mponcet/wololo/internal/device"
)

// Help lists the accepted commands. It is returned for anything unrecognised.
const Help = `help:
 add NAME MAC [CHECK_ADDR]
 del NAME
 wake NAME|MAC
 show`

// Waker sends a wake-up signal to a hardware address.
// *wol.Sender satisfies it.
type Waker interface {
	Wake(ctx context.Context, mac device.MAC) error
}

// Result is the outcome of one command.
type Result struct {
	// Message is the human-readable reply.
	Message string

	// OK is false when the command failed or was not understood.
	OK bool

	// Mutated is true when the repository changed.
	Mutated bool

	// Target is the device a magic packet was sent to, set whenever a send
	// was attempted; OK tells whether it succeeded. Its Name is zero when the
	// packet was addressed to a MAC that no registered device owns.
	Target *device.Device
}

// Handler parses and runs text commands against a repository.
//
// Thread Safety:
//   - Safe for concurrent use when the Repository and Waker are.
type Handler struct {
	repo  device.Repository
	waker Waker
}

// NewHandler returns a Handler. waker may be nil, in which case wake
// commands fail.
func NewHandler(repo device.Repository, waker Waker) *Handler {
	return &Handler{repo: repo, waker: waker}
}

// Execute runs a single command line such as "add pc1 00:01:02:03:04:05".
// Arguments are separated by whitespace.
func (h *Handler) Execute(ctx context.Context, text string) Result {
	args := strings.Fields(text)
	if len(args) == 0 {
		return Result{Message: Help}
	}

	switch {
	case args[0] == "add" && (len(args) == 3 || len(args) == 4):
		checkAddr := ""
		if len(args) == 4 {
			checkAddr = args[3]
		}
		return h.add(args[1], args[2], checkAddr)
	case args[0] == "del" && len(args) == 2:
		return h.del(args[1])
	case args[0] == "wake" && len(args) == 2:
		return h.wake(ctx, args[1])
	case (args[0] == "show" || args[0] == "list") && len(args) == 1:
		return h.show()
	default:
		return Result{Message: Help}
	}
}

func (h *Handler) add(name, mac, checkAddr string) Result {
	d, err := device.NewDevice(name, mac, checkAddr)
	if err != nil {
		return Result{Message: fmt.Sprintf("Failed to parse device name and/or mac address (%v)", err)}
	}

	if err := h.repo.Insert(d); err != nil {
		return Result{Message: fmt.Sprintf("Couldn't add device %s (%v)", name, err)}
	}

	return Result{Message: fmt.Sprintf("Device %s added", d.Name), OK: true, Mutated: true}
}

func (h *Handler) del(name string) Result {
	n, err := device.ParseName(name)
	if err != nil {
		return Result{Message: err.Error()}
	}

	if _, err := h.repo.Delete(n); err != nil {
		return Result{Message: fmt.Sprintf("Couldn't delete device %s (%v)", n, err)}
	}

	return Result{Message: fmt.Sprintf("Device %s deleted", n), OK: true, Mutated: true}
}

// wake resolves nameOrMAC as a hardware address first, then as a name.
func (h *Handler) wake(ctx context.Context, nameOrMAC string) Result {
	var target device.Device

	if mac, err := device.ParseMAC(nameOrMAC); err == nil {
		target = device.Device{MAC: mac}
		if d, ok := h.repo.FetchByMAC(mac); ok {
			target = d
		}
	} else if name, err := device.ParseName(nameOrMAC); err == nil {
		d, ok := h.repo.FetchByName(name)
		if !ok {
			return Result{Message: fmt.Sprintf("Couldn't find device %s", nameOrMAC)}
		}
		target = d
	} else {
		return Result{Message: fmt.Sprintf("%s is not a valid name or mac address", nameOrMAC)}
	}

	if h.waker == nil {
		return Result{Message: "Couldn't send magic packet (no sender configured)"}
	}
	if err := h.waker.Wake(ctx, target.MAC); err != nil {
		return Result{Message: fmt.Sprintf("Couldn't send magic packet (%v)", err), Target: &target}
	}

	return Result{Message: fmt.Sprintf("Magic packet sent to %s", target.MAC), OK: true, Target: &target}
}

func (h *Handler) show() Result {
	devices, ok := h.repo.FetchAll()
	if !ok {
		return Result{Message: "No devices", OK: true}
	}

	lines := make([]string, 0, len(devices))
	for _, d := range devices {
		lines = append(lines, Describe(d))
	}
	return Result{Message: strings.Join(lines, "\n"), OK: true}
}

// Describe renders one device the way show lists it.
func Describe(d device.Device) string {
	line := fmt.Sprintf("Device %s has mac address %s", d.Name, d.MAC)
	if d.CheckAddr != "" {
		line += fmt.Sprintf(" (check %s)", d.CheckAddr)
	}
	return line
}
