package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"doccast/core/token"
	"doccast/core/uploader"
	"doccast/model"
)

var (
	uploadGateway string
	uploadToken   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF through a running gateway",
	Long: `Upload a PDF to a DocCast gateway and print the extracted text
and generated podcast script. Progress is reported while the file is
being sent. A bearer token passed with --token is remembered for
subsequent runs.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("Cannot open %s: %v", path, err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			log.Fatalf("Cannot stat %s: %v", path, err)
		}

		tokenPath, err := token.DefaultTokenPath()
		if err != nil {
			log.Fatalf("Cannot resolve token path: %v", err)
		}
		tokens := token.NewFileStore(tokenPath)
		if uploadToken != "" {
			if err := tokens.Set(uploadToken); err != nil {
				log.Fatalf("Cannot store token: %v", err)
			}
		}

		u := uploader.New(uploadGateway+"/api/upload", tokens)

		lastPct := -1
		result := u.Upload(context.Background(), filepath.Base(path), "application/pdf", info.Size(), f,
			func(p model.UploadProgress) {
				if p.Percentage != lastPct {
					lastPct = p.Percentage
					fmt.Printf("\ruploading... %3d%% (%d/%d bytes)", p.Percentage, p.Loaded, p.Total)
				}
			})
		fmt.Println()

		if !result.Success {
			log.Fatalf("Upload failed: %s", result.Error)
		}

		fmt.Printf("Extracted %d characters of text.\n", len(result.FullText))
		if result.PodcastScript != "" {
			fmt.Println("\n--- podcast script ---")
			fmt.Println(result.PodcastScript)
		} else {
			fmt.Println("No podcast script was generated.")
		}
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadGateway, "gateway", "http://localhost:8080", "gateway base URL")
	uploadCmd.Flags().StringVar(&uploadToken, "token", "", "bearer token to authenticate the upload (remembered)")
	rootCmd.AddCommand(uploadCmd)
}
