package command

import (
	"fmt"
	"slices"
	"sort"
)

// Registry manages the collection of available commands.
type Registry struct {
	commands map[string]Command
	aliases  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command, replacing any command of the same name.
func (r *Registry) Register(cmd Command, aliases ...string) {
	r.commands[cmd.Name()] = cmd
	for _, alias := range aliases {
		r.aliases[alias] = cmd.Name()
	}
}

// Get returns a command by name or alias.
func (r *Registry) Get(name string) (Command, error) {
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	if cmd, ok := r.commands[name]; ok {
		return cmd, nil
	}
	return nil, fmt.Errorf("command not found: %s", name)
}

// List returns the sorted command names, without aliases.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the sorted aliases of the named command.
func (r *Registry) Aliases(name string) []string {
	var out []string
	for alias, target := range r.aliases {
		if target == name {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}
