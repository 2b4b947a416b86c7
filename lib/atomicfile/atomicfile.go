// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile writes generated artifacts so that readers never
// see a partial file.
//
// [Write] writes one file to a temporary sibling, fsyncs it, and
// renames it into place. [Batch] does the same for a group of files:
// every file is fully written to its temporary sibling before the
// first rename, so a failure while staging leaves none of the final
// paths touched. A rename failure part way through restores the files
// already renamed to their previous state.
package atomicfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// temporarySuffix marks staged files. A crash between staging and
// rename leaves only files with this suffix behind.
const temporarySuffix = ".tmp"

// Write atomically writes data to path with the given permissions. The
// parent directory must already exist.
func Write(path string, data []byte, perm os.FileMode) error {
	temporaryPath, err := stage(path, data, perm)
	if err != nil {
		return err
	}
	return commit(temporaryPath, path)
}

// stage writes data to the temporary sibling of path: write, sync,
// close, in that order. On failure the temporary file is removed.
func stage(path string, data []byte, perm os.FileMode) (string, error) {
	temporaryPath := path + temporarySuffix

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return "", fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return "", fmt.Errorf("writing temporary file for %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return "", fmt.Errorf("syncing temporary file for %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return "", fmt.Errorf("closing temporary file for %s: %w", path, err)
	}
	return temporaryPath, nil
}

// commit renames a staged file into place and syncs the parent
// directory so the rename survives power loss.
func commit(temporaryPath, path string) error {
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming %s into place: %w", path, err)
	}
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

// Batch collects files to be written together.
type Batch struct {
	files []pendingFile
}

type pendingFile struct {
	path string
	data []byte
	perm os.FileMode
}

// Add queues a file. Parent directories are created on Commit.
func (b *Batch) Add(path string, data []byte, perm os.FileMode) {
	b.files = append(b.files, pendingFile{path: path, data: data, perm: perm})
}

// Len returns the number of queued files.
func (b *Batch) Len() int { return len(b.files) }

// Commit stages every queued file, then renames them into place in
// the order they were added. If staging any file fails, all staged
// files are removed and no final path is modified. If a rename fails,
// the files renamed before it are restored: replaced files get their
// previous content back and new files are removed.
func (b *Batch) Commit() error {
	staged := make([]string, 0, len(b.files))
	discard := func() {
		for _, temporaryPath := range staged {
			os.Remove(temporaryPath)
		}
	}

	for _, file := range b.files {
		if err := os.MkdirAll(filepath.Dir(file.path), 0o755); err != nil {
			discard()
			return fmt.Errorf("creating directory for %s: %w", file.path, err)
		}
		temporaryPath, err := stage(file.path, file.data, file.perm)
		if err != nil {
			discard()
			return err
		}
		staged = append(staged, temporaryPath)
	}

	committed := make([]previousFile, 0, len(b.files))
	for index, file := range b.files {
		previous, err := snapshot(file.path)
		if err == nil {
			err = commit(staged[index], file.path)
		}
		if err != nil {
			for _, temporaryPath := range staged[index:] {
				os.Remove(temporaryPath)
			}
			if restoreErr := restore(committed); restoreErr != nil {
				return errors.Join(err, restoreErr)
			}
			return err
		}
		committed = append(committed, previous)
	}
	return nil
}

// previousFile is what a final path held before Commit renamed over it.
type previousFile struct {
	path    string
	existed bool
	data    []byte
	perm    os.FileMode
}

// snapshot records the regular file at path, if any. Anything that is
// not a regular file is left for the rename to reject.
func snapshot(path string) (previousFile, error) {
	previous := previousFile{path: path}
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return previous, nil
	}
	if err != nil {
		return previous, fmt.Errorf("inspecting %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return previous, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return previous, fmt.Errorf("reading previous %s: %w", path, err)
	}
	previous.existed = true
	previous.data = data
	previous.perm = info.Mode().Perm()
	return previous, nil
}

// restore undoes committed renames, newest first.
func restore(committed []previousFile) error {
	var errs []error
	for index := len(committed) - 1; index >= 0; index-- {
		previous := committed[index]
		if previous.existed {
			if err := Write(previous.path, previous.data, previous.perm); err != nil {
				errs = append(errs, fmt.Errorf("restoring %s: %w", previous.path, err))
			}
			continue
		}
		if err := os.Remove(previous.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", previous.path, err))
		}
	}
	return errors.Join(errs...)
}
