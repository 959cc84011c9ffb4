package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"loan-assessment-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID (e.g., loan.application.validate)")
	displayName := cmd.String("displayName", "", "Display Name (e.g., Validate Loan Application)")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "lending", "Category")
	taskType := cmd.String("taskType", "", "Zeebe task type (e.g., validate-loan-application)")
	version := cmd.String("version", "1.0.0", "Version")
	status := cmd.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")
	_ = cmd.Parse(args)

	if *id == "" || *displayName == "" || *description == "" || *taskType == "" {
		cmd.Usage()
		return fmt.Errorf("id, displayName, description and taskType are required for add")
	}

	reg, err := registry.LoadOrCreate(*path)
	if err != nil {
		return err
	}

	err = reg.Add(registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: registry.ImplementationStatus(*status),
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              "10s",
		Workflows:            []string{"loan-application"},
		Tags:                 []string{},
	})
	if err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}

	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID to update")
	field := cmd.String("field", "", "Field to update (status, version, displayName, description, category, taskType, timeout, retries)")
	value := cmd.String("value", "", "New value for the field")
	_ = cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		cmd.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	activity, err := reg.Find(*id)
	if err != nil {
		return err
	}
	if err := setField(activity, *field, *value); err != nil {
		return err
	}

	reg.Touch()
	if err := reg.Save(*path); err != nil {
		return err
	}

	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func setField(activity *registry.Activity, field, value string) error {
	switch field {
	case "status":
		activity.ImplementationStatus = registry.ImplementationStatus(value)
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	_ = cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file and compile every activity schema
  help     Show this help message

Examples:
  registry-updater add -id loan.application.archive -displayName "Archive Loan Application" -description "Archives closed applications" -taskType archive-loan-application
  registry-updater update -id loan.application.archive -field status -value completed
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
