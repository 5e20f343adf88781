package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

// Kind selects which of the five actions a run performs.
type Kind int

const (
	KindLoad Kind = iota + 1
	KindSave
	KindDelete
	KindListProfiles
	KindListDevices
)

// Action flag names, in the order they appear in help output.
const (
	flagLoad         = "load"
	flagSave         = "save"
	flagDelete       = "delete"
	flagListProfiles = "list-profiles"
	flagListDevices  = "list-devices"
)

var actionFlags = []string{flagLoad, flagSave, flagDelete, flagListProfiles, flagListDevices}

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return flagLoad
	case KindSave:
		return flagSave
	case KindDelete:
		return flagDelete
	case KindListProfiles:
		return flagListProfiles
	case KindListDevices:
		return flagListDevices
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TakesProfile reports whether the action carries a profile name.
func (k Kind) TakesProfile() bool {
	return k == KindLoad || k == KindSave || k == KindDelete
}

// Action is one requested operation. Profile is set only for load, save
// and delete.
type Action struct {
	Kind    Kind
	Profile string
}

// Load, Save and Delete build the name-carrying actions.
func Load(name string) Action   { return Action{Kind: KindLoad, Profile: name} }
func Save(name string) Action   { return Action{Kind: KindSave, Profile: name} }
func Delete(name string) Action { return Action{Kind: KindDelete, Profile: name} }

// ListProfiles and ListDevices build the listing actions.
func ListProfiles() Action { return Action{Kind: KindListProfiles} }
func ListDevices() Action  { return Action{Kind: KindListDevices} }

func (a Action) String() string {
	if a.Kind.TakesProfile() {
		return fmt.Sprintf("%s(%q)", a.Kind, a.Profile)
	}
	return a.Kind.String()
}

var errNoAction = errors.New("one of --load, --save, --delete, --list-profiles or --list-devices is required")

// actionFromFlags turns the parsed action flags into an Action. Cobra's flag
// groups have already rejected zero or several; this maps the survivor and
// rejects values that cannot name a profile.
func actionFromFlags(fs *pflag.FlagSet) (Action, error) {
	var selected []Action
	for _, name := range actionFlags {
		if !fs.Changed(name) {
			continue
		}
		a, ok, err := actionFromFlag(fs, name)
		if err != nil {
			return Action{}, err
		}
		if ok {
			selected = append(selected, a)
		}
	}

	switch len(selected) {
	case 0:
		return Action{}, errNoAction
	case 1:
		return selected[0], nil
	default:
		return Action{}, fmt.Errorf("only one action may be given, got %d", len(selected))
	}
}

// actionFromFlag reads one changed action flag. A bool flag explicitly set
// to false selects nothing.
func actionFromFlag(fs *pflag.FlagSet, name string) (Action, bool, error) {
	switch name {
	case flagListProfiles, flagListDevices:
		on, err := fs.GetBool(name)
		if err != nil || !on {
			return Action{}, false, err
		}
		if name == flagListProfiles {
			return ListProfiles(), true, nil
		}
		return ListDevices(), true, nil
	}

	value, err := fs.GetString(name)
	if err != nil {
		return Action{}, false, err
	}
	if value == "" {
		return Action{}, false, fmt.Errorf("--%s needs a non-empty profile name", name)
	}
	switch name {
	case flagLoad:
		return Load(value), true, nil
	case flagSave:
		return Save(value), true, nil
	default:
		return Delete(value), true, nil
	}
}
