package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func notesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage your notes on books",
	}
	cmd.AddCommand(notesListCmd(a), notesAddCmd(a), notesEditCmd(a), notesRmCmd(a))
	return cmd
}

func notesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <book-id>",
		Short: "List your notes on a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			notes, err := a.catalog.Notes(cmd.Context(), bookID)
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes on this book yet.")
				return nil
			}
			for _, n := range notes {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s (%s)\n", n.ID, n.Text, n.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func notesAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <book-id> <text>...",
		Short: "Add a note to a book",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			note, err := a.catalog.AddNote(cmd.Context(), bookID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added note %d.\n", note.ID)
			return nil
		},
	}
}

func notesEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <note-id> <text>...",
		Short: "Rewrite a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			noteID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid note id %q", args[0])
			}
			note, err := a.catalog.UpdateNote(cmd.Context(), noteID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d on book %d.\n", note.ID, note.Book)
			return nil
		},
	}
}

func notesRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <book-id> <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			noteID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid note id %q", args[1])
			}
			if err := a.catalog.DeleteNote(cmd.Context(), noteID, bookID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}
}
