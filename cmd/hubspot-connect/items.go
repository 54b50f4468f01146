package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/integrations/hubspot"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/requester"
)

type fetchOptions struct {
	credentials string
	accessToken string
}

func (o *fetchOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.credentials, "credentials", "", "Credentials JSON as returned by the /credentials endpoint")
	cmd.Flags().StringVar(&o.accessToken, "access-token", "", "HubSpot access token, used when --credentials is not set")
}

// credentialsJSON returns the credentials blob the contacts client expects.
func (o *fetchOptions) credentialsJSON() ([]byte, error) {
	switch {
	case o.credentials != "":
		return []byte(o.credentials), nil
	case o.accessToken != "":
		return json.Marshal(map[string]string{"access_token": o.accessToken})
	default:
		return nil, errors.New("either --credentials or --access-token is required")
	}
}

// fetchItems lists the contacts and reports a partial fetch through warning
// instead of failing.
func (o *fetchOptions) fetchItems(cmd *cobra.Command) (items []models.IntegrationItem, warning string, err error) {
	creds, err := o.credentialsJSON()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, "", err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return nil, "", err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := requester.NewHTTPRequester(requester.HTTPRequesterParams{Config: &cfg.HubSpot})
	client := hubspot.NewClient(&cfg.HubSpot, r)

	items, err = client.ListItems(ctx, creds)
	if ctx.Err() != nil {
		return nil, "", errors.New("interrupted")
	}
	var pageErr *models.PageFetchError
	if errors.As(err, &pageErr) {
		return items, fmt.Sprintf("Listing stopped early, showing the first %d contacts: %v", len(items), pageErr), nil
	}
	return items, "", err
}

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

func newItemsCmd() *cobra.Command {
	var opts fetchOptions
	var output string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List HubSpot contacts as integration items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, warning, err := opts.fetchItems(cmd)
			if err != nil {
				return err
			}
			if warning != "" {
				pterm.Warning.Println(warning)
			}
			return printItems(items, outputFormat(strings.ToLower(output)))
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", string(outputTable), "Output format (table|json|yaml)")
	return cmd
}

func printItems(items []models.IntegrationItem, format outputFormat) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if items == nil {
			items = []models.IntegrationItem{}
		}
		return enc.Encode(items)
	case outputYAML:
		enc := yaml.NewEncoder(os.Stdout)
		defer func() { _ = enc.Close() }()
		return enc.Encode(items)
	case outputTable:
		data := pterm.TableData{{"ID", "Name", "Created", "Updated", "URL"}}
		for _, item := range items {
			data = append(data, []string{
				models.StringValue(item.ID),
				item.Name,
				models.StringValue(item.CreationTime),
				models.StringValue(item.LastModifiedTime),
				models.StringValue(item.URL),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		pterm.Info.Printfln("%d contacts", len(items))
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}
