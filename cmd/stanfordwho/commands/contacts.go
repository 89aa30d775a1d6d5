package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stanfordwho-parser/internal/contacts"
)

var contactsFlags struct {
	input    string
	output   string
	template string
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Club contact list tools: extract, join, emails.",
}

var contactsExtractCmd = &cobra.Command{
	Use:   "extract -i <groups.html> -o <contacts.csv>",
	Short: "Extracts contact names with their club from a groups HTML page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(contactsFlags.input)
		if err != nil {
			return fmt.Errorf("failed to read input HTML: %w", err)
		}
		defer in.Close()

		found, err := contacts.Extract(in)
		if err != nil {
			return err
		}

		out, err := os.Create(contactsFlags.output)
		if err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		defer out.Close()
		if err := contacts.WriteCSV(out, found); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d contacts to %s\n", len(found), contactsFlags.output)
		return nil
	},
}

var contactsJoinCmd = &cobra.Command{
	Use:   "join -i <contacts.csv> -o <output.txt>",
	Short: "Writes all contact names as one comma separated line.",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := readContacts(contactsFlags.input)
		if err != nil {
			return err
		}
		if err := os.WriteFile(contactsFlags.output, []byte(contacts.JoinNames(list)), 0o644); err != nil {
			return fmt.Errorf("failed to write names: %w", err)
		}
		return nil
	},
}

var contactsEmailsCmd = &cobra.Command{
	Use:   "emails -i <contacts.csv> -o <emails.txt> [--template <file>]",
	Short: "Renders one outreach email per contact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := readContacts(contactsFlags.input)
		if err != nil {
			return err
		}
		tmpl, err := contacts.ParseTemplate(contactsFlags.template)
		if err != nil {
			return err
		}

		out, err := os.Create(contactsFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer out.Close()

		n, err := contacts.RenderEmails(out, tmpl, list)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d emails to %s\n", n, contactsFlags.output)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{contactsExtractCmd, contactsJoinCmd, contactsEmailsCmd} {
		c.Flags().StringVarP(&contactsFlags.input, "input", "i", "", "Input file.")
		c.Flags().StringVarP(&contactsFlags.output, "output", "o", "", "Output file.")
		_ = c.MarkFlagRequired("input")
		_ = c.MarkFlagRequired("output")
		contactsCmd.AddCommand(c)
	}
	contactsEmailsCmd.Flags().StringVar(&contactsFlags.template, "template", "", "text/template file; fields .Name and .Club.")
	rootCmd.AddCommand(contactsCmd)
}

func readContacts(path string) ([]contacts.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts: %w", err)
	}
	defer f.Close()
	return contacts.ReadCSV(f)
}
