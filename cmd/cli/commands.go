package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/akeren/participant-console/domain/participant"
	"github.com/akeren/participant-console/internal/models"
	"github.com/spf13/cobra"
)

// draftFlags maps command-line flags onto draft fields, in form order.
var draftFlags = []struct {
	flag  string
	field string
	usage string
}{
	{"id", participant.FieldID, "participant id (numeric)"},
	{"name", participant.FieldName, "full name"},
	{"gender", participant.FieldGender, "MALE or FEMALE"},
	{"email", participant.FieldEmail, "email address"},
	{"contact", participant.FieldContact, "phone or other contact"},
	{"event-name", participant.FieldEventName, "event the participant attends"},
	{"role", participant.FieldRole, "role at the event"},
	{"organization", participant.FieldOrganization, "organization"},
}

func createListCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every participant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.mount(cmd)
			if err != nil {
				return err
			}

			snapshot := s.service.Snapshot()
			return render(cmd.OutOrStdout(), snapshot, snapshot.Participants)
		},
	}
}

func createGetCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Look up one participant by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.mount(cmd)
			if err != nil {
				return err
			}

			_ = s.service.FetchByID(s.ctx, args[0])

			snapshot := s.service.Snapshot()
			var found []models.Participant
			if snapshot.Lookup != nil {
				found = append(found, *snapshot.Lookup)
			}
			return render(cmd.OutOrStdout(), snapshot, found)
		},
	}
}

func createAddCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a participant",
		Long:  "Create a participant. Every field is required.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.mount(cmd)
			if err != nil {
				return err
			}

			if err := applyDraftFlags(cmd, s.service, true); err != nil {
				return err
			}
			_ = s.service.Submit(s.ctx)

			snapshot := s.service.Snapshot()
			return render(cmd.OutOrStdout(), snapshot, snapshot.Participants)
		},
	}

	registerDraftFlags(cmd, true)
	return cmd
}

func createUpdateCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing participant",
		Long:  "Load the participant with the given id and submit it with the changed fields.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New(participant.MsgInvalidID)
			}

			s, err := app.mount(cmd)
			if err != nil {
				return err
			}

			if err := s.service.Edit(id); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), red(participant.MsgNotFound))
				return errors.New(participant.MsgNotFound)
			}

			if err := applyDraftFlags(cmd, s.service, false); err != nil {
				return err
			}
			_ = s.service.Submit(s.ctx)

			snapshot := s.service.Snapshot()
			return render(cmd.OutOrStdout(), snapshot, snapshot.Participants)
		},
	}

	registerDraftFlags(cmd, false)
	return cmd
}

func createDeleteCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New(participant.MsgInvalidID)
			}

			s, err := app.mount(cmd)
			if err != nil {
				return err
			}

			_ = s.service.Delete(s.ctx, id)

			snapshot := s.service.Snapshot()
			return render(cmd.OutOrStdout(), snapshot, snapshot.Participants)
		},
	}
}

// registerDraftFlags adds one flag per draft field. The id of an existing
// participant comes from the positional argument, so update omits it.
func registerDraftFlags(cmd *cobra.Command, withID bool) {
	for _, f := range draftFlags {
		if f.field == participant.FieldID && !withID {
			continue
		}
		cmd.Flags().String(f.flag, "", f.usage)
	}
}

// applyDraftFlags copies flags into the draft. With all set every field is written,
// so a missing flag surfaces as a blank field during validation.
func applyDraftFlags(cmd *cobra.Command, service participant.ParticipantService, all bool) error {
	for _, f := range draftFlags {
		flag := cmd.Flags().Lookup(f.flag)
		if flag == nil || (!all && !flag.Changed) {
			continue
		}

		value := flag.Value.String()
		if f.field == participant.FieldGender {
			if gender, ok := models.ParseGender(value); ok {
				value = string(gender)
			}
		}

		if err := service.SetField(f.field, value); err != nil {
			return err
		}
	}
	return nil
}
