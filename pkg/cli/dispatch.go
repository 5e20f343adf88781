package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/rgbprofile/pkg/device"
)

// dispatcher runs one action against an open session and reports the
// outcome as text.
type dispatcher struct {
	ctrl   device.Controller
	stdout io.Writer
	stderr io.Writer
}

// dispatch returns true when the action succeeded. Listing actions report
// their own errors and always succeed.
func (d *dispatcher) dispatch(ctx context.Context, a Action) bool {
	log.Debug().Stringer("action", a).Msg("Dispatching")

	switch a.Kind {
	case KindLoad:
		return d.profileOp(ctx, a.Profile, d.ctrl.LoadProfile,
			"Loading profile", "Successfully loaded profile", "loading")
	case KindSave:
		return d.profileOp(ctx, a.Profile, d.ctrl.SaveProfile,
			"Saving current state as profile", "Successfully saved profile", "saving")
	case KindDelete:
		return d.profileOp(ctx, a.Profile, d.ctrl.DeleteProfile,
			"Deleting profile", "Successfully deleted profile", "deleting")
	case KindListProfiles:
		d.listProfiles(ctx)
		return true
	case KindListDevices:
		d.listDevices(ctx)
		return true
	default:
		fmt.Fprintf(d.stderr, "Unknown action: %s\n", a)
		return false
	}
}

func (d *dispatcher) profileOp(ctx context.Context, name string, op func(context.Context, string) error, start, success, verb string) bool {
	fmt.Fprintf(d.stdout, "%s: %s\n", start, name)
	if err := op(ctx, name); err != nil {
		fmt.Fprintf(d.stderr, "Error %s profile '%s': %v\n", verb, name, err)
		return false
	}
	fmt.Fprintf(d.stdout, "%s: %s\n", success, name)
	return true
}

func (d *dispatcher) listProfiles(ctx context.Context) {
	names, err := d.ctrl.Profiles(ctx)
	if err != nil {
		fmt.Fprintf(d.stderr, "Error listing profiles: %v\n", err)
		return
	}
	if len(names) == 0 {
		fmt.Fprintln(d.stdout, "No profiles found")
		return
	}

	fmt.Fprintln(d.stdout, "\nAvailable profiles:")
	for i, name := range names {
		fmt.Fprintf(d.stdout, "  %d: %s\n", i, name)
	}
}

func (d *dispatcher) listDevices(ctx context.Context) {
	devices, err := d.ctrl.DevicesByType(ctx, device.TypeDRAM)
	if err != nil {
		fmt.Fprintf(d.stderr, "Error listing devices: %v\n", err)
		return
	}
	if len(devices) == 0 {
		fmt.Fprintln(d.stdout, "No RGB devices found")
		return
	}

	fmt.Fprintf(d.stdout, "\nFound %d RGB device(s):\n", len(devices))
	for i, dev := range devices {
		fmt.Fprintf(d.stdout, "  %d: %s (%s)\n", i, dev.Name, dev.Type)
		fmt.Fprintf(d.stdout, "     Modes: %d, LEDs: %d\n", len(dev.Modes), len(dev.LEDs))
	}
}
