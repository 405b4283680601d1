/*
Package cmd implements the command-line interface for the orb episodic
memory engine. It provides commands for serving the memory API and for
recording and recalling episodes directly.
*/
package cmd

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theapemachine/orb/pkg/memory"
	"github.com/theapemachine/orb/pkg/provider"
)

/*
Embed a mini filesystem into the binary to hold the default config file.
This will be written to the home directory of the user running the
service, which allows a developer to easily override the config file.
*/
//go:embed cfg/*
var embedded embed.FS

var (
	projectName  = "orb"
	cfgFile      string
	openaiAPIKey string

	rootCmd = &cobra.Command{
		Use:   "orb",
		Short: "Per-user episodic memory over a vector store",
		Long:  longRoot,
	}
)

/*
Execute is the main entry point for the orb CLI.
*/
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yml",
		"config file (default is $HOME/."+projectName+"/config.yml)",
	)

	rootCmd.PersistentFlags().StringVar(
		&openaiAPIKey,
		"openai-api-key",
		os.Getenv("OPENAI_API_KEY"),
		"API key for the OpenAI summarizer",
	)
}

/*
initConfig writes the default config file to the user's home directory
if it doesn't exist, and then reads the config file from there.
*/
func initConfig() {
	var err error

	if err = writeConfig(); err != nil {
		log.Fatal(err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	home, _ := os.UserHomeDir()
	viper.AddConfigPath(home + "/." + projectName)

	if err = viper.ReadInConfig(); err != nil {
		log.Fatal(err)
		return
	}

	// If OpenAI API key provided via flag, set environment variable for
	// the summarizer client.
	if openaiAPIKey != "" {
		_ = os.Setenv("OPENAI_API_KEY", openaiAPIKey)
	}
}

/*
newEngine assembles the engine from the active configuration.
*/
func newEngine() (*memory.Engine, error) {
	embedder, err := memory.NewOllamaEmbedder(
		viper.GetString("endpoints.ollama"),
		viper.GetString("models.embedder"),
		viper.GetInt("memory.dimension"),
	)

	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	store := memory.NewStore(
		memory.NewQdrantStore(viper.GetString("endpoints.qdrant")),
		embedder,
		memory.WithCollectionPrefix(viper.GetString("memory.collection_prefix")),
		memory.WithDimension(viper.GetInt("memory.dimension")),
	)

	reflector := memory.NewReflector(provider.NewOpenAISummarizer(
		provider.WithModel(viper.GetString("models.summarizer")),
	))

	return memory.NewEngine(reflector, store, viper.GetFloat64("memory.alpha")), nil
}

/*
writeConfig writes the default config file to the user's home directory.
*/
func writeConfig() (err error) {
	var (
		home, _ = os.UserHomeDir()
		fh      fs.File
		buf     bytes.Buffer
	)

	configDir := home + "/." + projectName

	if !checkFileExists(configDir) {
		if err = os.MkdirAll(configDir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	for _, file := range []string{cfgFile} {
		fullPath := configDir + "/" + file

		if checkFileExists(fullPath) {
			continue
		}

		if fh, err = embedded.Open("cfg/" + file); err != nil {
			return fmt.Errorf("failed to open embedded config file: %w", err)
		}

		if _, err = io.Copy(&buf, fh); err != nil {
			fh.Close()
			return fmt.Errorf("failed to read embedded config file: %w", err)
		}

		if err = os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			fh.Close()
			return fmt.Errorf("failed to write config file: %w", err)
		}

		log.Println("wrote config file to", fullPath)
		buf.Reset()
		fh.Close()
	}

	return nil
}

func checkFileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !errors.Is(err, os.ErrNotExist)
}

var longRoot = `
orb maintains per-user episodic memory of past conversations and
retrieves the most relevant episodes to prime a future conversation.
Episodes are summarized through reflection, stored in per-user Qdrant
collections, and retrieved with hybrid vector + keyword ranking.
`
