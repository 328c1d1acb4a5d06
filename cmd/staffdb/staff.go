package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newDepartmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "department",
		Short: "Manage departments",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME LOCATION",
			Short: "Add a department",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := app.db.CreateDepartment(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "department %d created\n", d.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List departments",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				departments, err := app.db.ListDepartments()
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tLOCATION")
				for _, d := range departments {
					fmt.Fprintf(w, "%d\t%s\t%s\n", d.ID, d.Name, d.Location)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a department without employees",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				dept, err := app.db.GetDepartment(id)
				if err != nil {
					return err
				}
				if dept == nil {
					return fmt.Errorf("department %d not found", id)
				}
				if err := app.db.DeleteDepartment(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "department %d deleted\n", id)
				return nil
			},
		},
	)
	return cmd
}

func newEmployeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employees",
	}

	add := &cobra.Command{
		Use:   "add NAME JOB_TITLE [DEPARTMENT_ID]",
		Short: "Add an employee",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var departmentID *int64
			if len(args) == 3 {
				id, err := parseID(args[2])
				if err != nil {
					return err
				}
				dept, err := app.db.GetDepartment(id)
				if err != nil {
					return err
				}
				if dept == nil {
					return fmt.Errorf("department %d not found", id)
				}
				departmentID = &id
			}
			e, err := app.db.CreateEmployee(args[0], args[1], departmentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "employee %d created\n", e.ID)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := app.db.ListEmployees()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tJOB TITLE\tDEPARTMENT")
			for _, e := range employees {
				dept := "-"
				if e.DepartmentID != nil {
					dept = strconv.FormatInt(*e.DepartmentID, 10)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Name, e.JobTitle, dept)
			}
			return w.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an employee without reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.db.DeleteEmployee(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "employee %d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, list, del)
	return cmd
}
