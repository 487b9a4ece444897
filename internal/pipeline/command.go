package pipeline

import (
	"context"
	"fmt"
)

// StageCommand is one step of the build pipeline.
type StageCommand interface {
	// Name returns the unique stage identifier.
	Name() StageName

	// Description returns a human-readable summary of the stage.
	Description() string

	// Dependencies lists stages that must have succeeded before this one runs.
	Dependencies() []StageName

	// Execute runs the stage against the shared build state.
	Execute(ctx context.Context, state *BuildState) StageExecution
}

// BaseCommand provides common metadata plumbing for stage implementations.
type BaseCommand struct {
	name        StageName
	description string
	deps        []StageName
}

// NewBaseCommand creates command metadata.
func NewBaseCommand(name StageName, description string, deps ...StageName) BaseCommand {
	return BaseCommand{name: name, description: description, deps: deps}
}

func (c BaseCommand) Name() StageName           { return c.name }
func (c BaseCommand) Description() string       { return c.description }
func (c BaseCommand) Dependencies() []StageName { return c.deps }

// Registry holds the available stage commands.
type Registry struct {
	commands map[StageName]StageCommand
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[StageName]StageCommand)}
}

// Register adds a command. Registering the same name twice is an error.
func (r *Registry) Register(cmd StageCommand) error {
	if _, exists := r.commands[cmd.Name()]; exists {
		return fmt.Errorf("stage %q already registered", cmd.Name())
	}
	r.commands[cmd.Name()] = cmd
	return nil
}

// Get returns the command for a stage name.
func (r *Registry) Get(name StageName) (StageCommand, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// ValidateDependencies checks that every registered command's dependencies
// are themselves registered.
func (r *Registry) ValidateDependencies() error {
	for name, cmd := range r.commands {
		for _, dep := range cmd.Dependencies() {
			if _, ok := r.commands[dep]; !ok {
				return fmt.Errorf("stage %q depends on unregistered stage %q", name, dep)
			}
		}
	}
	return nil
}
