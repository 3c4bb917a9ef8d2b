package options

import (
	"github.com/spf13/cobra"
)

// MetadataOptions carry a record's metadata, inline or from a JSON file.
type MetadataOptions struct {
	Metadata     string
	MetadataFile string
}

func AddMetadataArgs(cmd *cobra.Command, o *MetadataOptions) {
	cmd.Flags().StringVarP(&o.Metadata, "metadata", "m", "",
		"Metadata as a JSON document.")
	cmd.Flags().StringVarP(&o.MetadataFile, "metadata-file", "f", "",
		"Read the metadata from a JSON file.")
	cmd.MarkFlagsMutuallyExclusive("metadata", "metadata-file")
}

// TitleOptions
type TitleOptions struct {
	Title string
}

func AddTitleArgs(cmd *cobra.Command, o *TitleOptions) {
	cmd.Flags().StringVarP(&o.Title, "title", "t", "",
		"Record title.")
}
