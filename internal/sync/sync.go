// Package sync reconciles registered deck sources with storage.
package sync

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tangorin-AP/genius-next-sub000/internal/gitsource"
	"github.com/Tangorin-AP/genius-next-sub000/internal/pairkey"
	"github.com/Tangorin-AP/genius-next-sub000/internal/parser"
	"github.com/Tangorin-AP/genius-next-sub000/internal/storage"
)

// Run iterates over all registered sources and reconciles them. Each
// markdown file in a source becomes a deck named after the file stem;
// new pairs are inserted with fresh associations and pairs that
// disappeared from the file are deleted.
func Run(ctx context.Context, db *storage.DB, reposDir string) error {
	slog.Info("starting sync for all sources")
	sources, err := db.GetAllSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("no sources configured")
		return nil
	}

	if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create repos directory: %w", err)
	}

	for _, source := range sources {
		slog.Info("syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		localPath := source.Path
		if source.Type == "git" {
			localPath, err = gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				slog.Error("cannot determine local path for git repo", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(source.Path, localPath); err != nil {
				slog.Error("error syncing git repo", "url", source.Path, "error", err)
				continue
			}
		}

		if err := reconcileSource(ctx, db, source, localPath); err != nil {
			slog.Error("error reconciling source", "path", source.Path, "error", err)
			continue
		}
		if err := db.UpdateSourceLastScanned(ctx, source.ID); err != nil {
			slog.Warn("failed to update last scanned for source", "source_id", source.ID, "error", err)
		}
	}
	slog.Info("sync complete")
	return nil
}

func reconcileSource(ctx context.Context, db *storage.DB, source storage.Source, localPath string) error {
	return filepath.WalkDir(localPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		deckName := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if err := reconcileDeckFile(ctx, db, source, deckName, path); err != nil {
			slog.Error("error reconciling deck file", "path", path, "error", err)
		}
		return nil
	})
}

func reconcileDeckFile(ctx context.Context, db *storage.DB, source storage.Source, deckName, path string) error {
	parsed, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	deck, err := db.CreateDeck(ctx, deckName, source.ID)
	if err != nil {
		return err
	}

	foundHashes := make(map[string]bool, len(parsed))
	var inserted int
	for _, p := range parsed {
		p.DeckID = deck.ID
		p.Hash = pairkey.Hash(p)
		if foundHashes[p.Hash] {
			continue // duplicate within the file
		}
		foundHashes[p.Hash] = true

		existing, err := db.FindPairByHash(ctx, deck.ID, p.Hash)
		if err != nil {
			return fmt.Errorf("db check for %s: %w", p.Hash, err)
		}
		if existing == nil {
			if _, err := db.InsertPair(ctx, p); err != nil {
				return fmt.Errorf("db insert for %s: %w", p.Hash, err)
			}
			inserted++
		}
	}

	dbPairs, err := db.PairsByDeck(ctx, deck.ID)
	if err != nil {
		return err
	}
	var orphaned int
	for _, dbPair := range dbPairs {
		if !foundHashes[dbPair.Hash] {
			orphaned++
			if err := db.DeletePair(ctx, dbPair.ID); err != nil {
				slog.Warn("failed to delete orphaned pair", "hash", dbPair.Hash, "error", err)
			}
		}
	}

	slog.Info("deck reconciled",
		"deck", deckName,
		"parsed_pairs", len(parsed),
		"inserted", inserted,
		"orphaned_deleted", orphaned,
	)
	return nil
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
