package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saltyorg/staffdb/internal/review"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage performance reviews",
	}
	cmd.AddCommand(
		newReviewCreateCmd(),
		newReviewShowCmd(),
		newReviewListCmd(),
		newReviewUpdateCmd(),
		newReviewDeleteCmd(),
		&cobra.Command{
			Use:   "drop-table",
			Short: "Drop the reviews table and every review in it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.reviews.DropTable()
			},
		},
	)
	return cmd
}

func newReviewCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create YEAR SUMMARY EMPLOYEE_ID",
		Short: "Create a review",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := review.ParseYear(args[0])
			if err != nil {
				return err
			}
			employeeID, err := review.ParseEmployeeID(args[2])
			if err != nil {
				return err
			}
			r, err := app.reviews.Create(review.Fields{Year: year, Summary: args[1], EmployeeID: employeeID})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func newReviewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := findReview(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func newReviewListCmd() *cobra.Command {
	var employee int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				reviews []*review.Review
				err     error
			)
			if employee > 0 {
				reviews, err = app.reviews.ForEmployee(employee)
			} else {
				reviews, err = app.reviews.GetAll()
			}
			if err != nil {
				return err
			}
			return printReviews(cmd.OutOrStdout(), reviews)
		},
	}
	cmd.Flags().Int64Var(&employee, "employee", 0, "Only list reviews of this employee")
	return cmd
}

func newReviewUpdateCmd() *cobra.Command {
	var (
		year     string
		summary  string
		employee string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := findReview(args[0])
			if err != nil {
				return err
			}

			// Validate every change before touching the instance.
			fields := r.Fields()
			if cmd.Flags().Changed("year") {
				if fields.Year, err = review.ParseYear(year); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("summary") {
				fields.Summary = summary
			}
			if cmd.Flags().Changed("employee") {
				if fields.EmployeeID, err = review.ParseEmployeeID(employee); err != nil {
					return err
				}
			}
			if err := fields.Validate(); err != nil {
				return err
			}
			if fields.EmployeeID != r.EmployeeID() {
				if err := app.reviews.AssignEmployee(r, fields.EmployeeID); err != nil {
					return err
				}
			}
			if err := r.SetYear(fields.Year); err != nil {
				return err
			}
			if err := r.SetSummary(fields.Summary); err != nil {
				return err
			}

			if err := app.reviews.Update(r); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r)
			return nil
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "New review year")
	cmd.Flags().StringVar(&summary, "summary", "", "New summary")
	cmd.Flags().StringVar(&employee, "employee", "", "New employee ID")
	return cmd
}

func newReviewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := findReview(args[0])
			if err != nil {
				return err
			}
			id := r.ID()
			if err := app.reviews.Delete(r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "review %d deleted\n", id)
			return nil
		},
	}
}

func findReview(arg string) (*review.Review, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	return app.reviews.FindByID(id)
}

func printReviews(out io.Writer, reviews []*review.Review) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tYEAR\tEMPLOYEE\tSUMMARY")
	for _, r := range reviews {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n", r.ID(), r.Year(), r.EmployeeID(), r.Summary())
	}
	return w.Flush()
}
