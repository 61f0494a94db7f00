package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func printJSON(cmd *cobra.Command, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		cmd.PrintErrln(err)
		return
	}

	cmd.Println(string(data))
}
