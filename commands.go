package phy

import (
	"fmt"
	"sort"

	"github.com/ZhixiaoSu/phy/core"
	"github.com/ZhixiaoSu/phy/model"
)

// CommandArgs carries the operands for a session command. Each command reads
// only the fields it needs.
type CommandArgs struct {
	Model    model.Model
	Clusters []core.ClusterID
	Spikes   []core.SpikeID
	Group    core.Group
}

// Command is one entry of the session's fixed operation table: a stable
// name, a human-readable title for front ends to label buttons or menu
// entries with, and a typed runner. The table is built once per session;
// front ends bind their inputs to it instead of reflecting over the session.
type Command struct {
	Name  string
	Title string
	Run   func(args CommandArgs) (model.UpdateDescriptor, error)
}

// Command looks up an operation by name.
func (s *Session) Command(name string) (Command, error) {
	cmd, ok := s.commands[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return cmd, nil
}

// Commands returns the session's operation table, sorted by name.
func (s *Session) Commands() []Command {
	out := make([]Command, 0, len(s.commands))
	for _, cmd := range s.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func buildCommands(s *Session) map[string]Command {
	table := []Command{
		{
			Name:  "open",
			Title: "Open",
			Run: func(args CommandArgs) (model.UpdateDescriptor, error) {
				return model.UpdateDescriptor{}, s.Open(args.Model)
			},
		},
		{
			Name:  "select",
			Title: "Select clusters",
			Run: func(args CommandArgs) (model.UpdateDescriptor, error) {
				return model.UpdateDescriptor{}, s.Select(args.Clusters)
			},
		},
		{
			Name:  "merge",
			Title: "Merge",
			Run: func(args CommandArgs) (model.UpdateDescriptor, error) {
				return s.Merge(args.Clusters)
			},
		},
		{
			Name:  "split",
			Title: "Split",
			Run: func(args CommandArgs) (model.UpdateDescriptor, error) {
				return s.Split(args.Spikes)
			},
		},
		{
			Name:  "move",
			Title: "Move clusters to a group",
			Run: func(args CommandArgs) (model.UpdateDescriptor, error) {
				return s.Move(args.Clusters, args.Group)
			},
		},
		{
			Name:  "undo",
			Title: "Undo",
			Run: func(args CommandArgs) (model.UpdateDescriptor, error) {
				return s.Undo()
			},
		},
		{
			Name:  "redo",
			Title: "Redo",
			Run: func(args CommandArgs) (model.UpdateDescriptor, error) {
				return s.Redo()
			},
		},
	}

	m := make(map[string]Command, len(table))
	for _, cmd := range table {
		m[cmd.Name] = cmd
	}
	return m
}
