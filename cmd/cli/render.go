package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/akeren/participant-console/domain/participant"
	"github.com/akeren/participant-console/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const emptyListText = "No participants found."

var columnTitles = []string{"id", "name", "gender", "email", "contact", "event name", "role", "organization"}

func renderBanner(w io.Writer, banner participant.Banner) {
	if banner.IsEmpty() {
		return
	}

	if banner.IsError() {
		fmt.Fprintln(w, red(banner.Text))
		return
	}
	fmt.Fprintln(w, green(banner.Text))
}

func renderTable(w io.Writer, participants []models.Participant) error {
	if len(participants) == 0 {
		_, err := fmt.Fprintln(w, emptyListText)
		return err
	}

	title := cases.Title(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for i, column := range columnTitles {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, title.String(column))
	}
	fmt.Fprintln(tw)

	for _, p := range participants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			strconv.Itoa(p.ID), p.Name, p.Gender, p.Email, p.Contact, p.EventName, p.Role, p.Organization)
	}

	return tw.Flush()
}

// render prints the banner then the table, and turns an error banner into a
// non-zero exit.
func render(w io.Writer, snapshot participant.Snapshot, participants []models.Participant) error {
	renderBanner(w, snapshot.Banner)
	if err := renderTable(w, participants); err != nil {
		return err
	}

	if snapshot.Banner.IsError() {
		return errors.New(snapshot.Banner.Text)
	}
	return nil
}
