// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/polyd/polyd/internal/bootcfg"
	"github.com/polyd/polyd/internal/kvstore"
	"github.com/polyd/polyd/northbound"
)

var showJournalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List committed northbound transactions",
	Long: `Opens the daemon's badger store directly and lists the durable
transaction journal (§6). This reads the store without requiring a running
daemon process; it must not be run concurrently with "polyd run" against
the same store directory, since badger takes an exclusive file lock.`,
	RunE: runShowJournal,
}

func runShowJournal(cmd *cobra.Command, args []string) error {
	cfg, err := bootcfg.Load(cfgFile)
	if err != nil {
		return err
	}

	store, err := kvstore.Open(cfg.Store.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := northbound.NewJournal(store).List()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			itoa(s.ID),
			s.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			s.Comment,
		})
	}
	printTable(os.Stdout, []string{"ID", "TIMESTAMP", "COMMENT"}, rows)
	return nil
}
