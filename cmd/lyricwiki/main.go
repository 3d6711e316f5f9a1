// Package main is a small lookup tool around the lyricwiki client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/gofandom/lyricwiki"
	"github.com/gofandom/lyricwiki/config"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "Path to config file")
		artist  = flag.String("artist", "", "Artist name (required)")
		album   = flag.String("album", "", "Album name; lists its songs")
		song    = flag.String("song", "", "Song title; prints its lyrics")
		info    = flag.Bool("info", false, "Print the artist information block")
	)
	flag.Parse()

	if *artist == "" {
		fmt.Fprintln(os.Stderr, "usage: lyricwiki -artist NAME [-album NAME] [-song TITLE] [-info]")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	client, logger, cleanup, err := config.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client init failed: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, client, *artist, *album, *song, *info); err != nil {
		logger.Error("lookup failed", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, client *lyricwiki.Client, artist, album, song string, info bool) error {
	switch {
	case song != "":
		s, err := client.SearchSong(ctx, artist, album, song)
		if err != nil {
			return err
		}
		lyrics, err := s.Lyrics(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s - %s\n\n%s\n", s.ArtistName(), s.Name(), lyrics)
		return nil

	case album != "":
		al, err := client.SearchAlbum(ctx, artist, album)
		if err != nil {
			return err
		}
		songs, err := al.AllSongs(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s - %s (%d)\n", al.ArtistName(), al.Name(), al.Year())
		for i, s := range songs {
			fmt.Printf("%2d. %s\n", i+1, s.Name())
		}
		return nil

	case info:
		a, err := client.SearchArtist(ctx, artist)
		if err != nil {
			return err
		}
		ai, err := a.Info(ctx)
		if err != nil {
			return err
		}
		fmt.Println(a.Name())
		if ai.Description != "" {
			fmt.Printf("\n%s\n", ai.Description)
		}
		labels := make([]string, 0, len(ai.Details))
		for label := range ai.Details {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Printf("%s: %s\n", label, strings.Join(ai.Details[label], ", "))
		}
		platforms := make([]string, 0, len(ai.Links))
		for platform := range ai.Links {
			platforms = append(platforms, platform)
		}
		sort.Strings(platforms)
		for _, platform := range platforms {
			fmt.Printf("%s: %s\n", platform, ai.Links[platform])
		}
		return nil

	default:
		a, err := client.SearchArtist(ctx, artist)
		if err != nil {
			return err
		}
		albums, err := a.AllAlbums(ctx)
		if err != nil {
			return err
		}
		fmt.Println(a.Name())
		for _, al := range albums {
			if al.Year() > 0 {
				fmt.Printf("  %s (%d)\n", al.Name(), al.Year())
			} else {
				fmt.Printf("  %s\n", al.Name())
			}
		}
		return nil
	}
}
