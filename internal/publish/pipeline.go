// Package publish implements the commit pipeline: the sequential
// transaction core that turns an in-memory edit into one atomic multi-file
// commit on a remote branch.
//
// The provider's object-graph API has no multi-file transaction primitive
// except "build one tree, make one commit, fast-forward one ref", so the
// pipeline runs exactly that chain:
//
//	Idle → FetchingRef → UploadingAssets → BuildingTree →
//	CreatingCommit → UpdatingRef → {Succeeded | Failed}
//
// No stage retries. A failure at any stage is terminal for the attempt;
// blobs uploaded before the failure become harmless orphans on the
// provider side.
package publish

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mlevkov/pagekeeper/internal/common"
	"github.com/mlevkov/pagekeeper/internal/cryptox"
	"github.com/mlevkov/pagekeeper/internal/githost"
	"github.com/mlevkov/pagekeeper/internal/logging"
)

// TokenSource yields the installation access token for the session.
// *auth.TokenCache satisfies it.
type TokenSource interface {
	Get(ctx context.Context) (string, error)
}

type Pipeline struct {
	client githost.Client
	tokens TokenSource
	branch string
	log    logging.Logger
}

func NewPipeline(client githost.Client, tokens TokenSource, branch string, log logging.Logger) *Pipeline {
	return &Pipeline{client: client, tokens: tokens, branch: branch, log: log}
}

// Branch returns the publish branch this pipeline targets.
func (p *Pipeline) Branch() string { return p.branch }

// Publish runs tx as one sequential transaction and returns the new commit
// sha. observe (optional) receives one event per stage transition.
//
// The base commit sha is read freshly at the start of every run, and the
// final ref update is accepted by the provider only as a fast-forward from
// it: if a concurrent writer moved the tip in between, the result is
// common.ErrConflict and the old tip is retained. The token is taken from
// the session cache as-is; a token that expires mid-transaction surfaces
// as an auth-class failure at whatever stage hits it.
func (p *Pipeline) Publish(ctx context.Context, tx Transaction, observe Observer) (string, error) {
	emit := func(e Event) {
		if observe != nil {
			observe(e)
		}
	}
	fail := func(stage Stage, err error) error {
		err = fmt.Errorf("%s: %w", stage, err)
		p.log.Error(ctx, "publish failed", "stage", string(stage), "error", err)
		emit(Event{Stage: StageFailed, Err: err})
		return err
	}

	if err := validate(tx); err != nil {
		return "", fail(StageIdle, err)
	}

	token, err := p.tokens.Get(ctx)
	if err != nil {
		return "", fail(StageIdle, err)
	}
	p.client.SetToken(token)

	emit(Event{Stage: StageFetchingRef})
	baseSHA, err := p.client.GetBranchSHA(ctx, p.branch)
	if err != nil {
		return "", fail(StageFetchingRef, err)
	}
	p.log.Debug(ctx, "fetched branch tip", "branch", p.branch, "sha", baseSHA)

	emit(Event{Stage: StageUploadingAssets})
	blobs, err := p.uploadBlobs(ctx, tx)
	if err != nil {
		return "", fail(StageUploadingAssets, err)
	}

	emit(Event{Stage: StageBuildingTree})
	treeSHA, err := p.client.CreateTree(ctx, baseSHA, treeEntries(tx, blobs))
	if err != nil {
		return "", fail(StageBuildingTree, err)
	}

	emit(Event{Stage: StageCreatingCommit})
	commitSHA, err := p.client.CreateCommit(ctx, tx.Message, treeSHA, []string{baseSHA})
	if err != nil {
		return "", fail(StageCreatingCommit, err)
	}

	emit(Event{Stage: StageUpdatingRef})
	if err := p.client.UpdateBranch(ctx, p.branch, commitSHA); err != nil {
		return "", fail(StageUpdatingRef, err)
	}

	p.log.Info(ctx, "published", "branch", p.branch, "commit", commitSHA,
		"texts", len(tx.Texts), "assets", len(tx.Assets), "deletes", len(tx.Deletes))
	emit(Event{Stage: StageSucceeded})
	return commitSHA, nil
}

// uploadBlobs creates one blob per text file and at most one blob per
// distinct asset byte sequence, returning path → blob sha.
func (p *Pipeline) uploadBlobs(ctx context.Context, tx Transaction) (map[string]string, error) {
	blobs := make(map[string]string, len(tx.Texts)+len(tx.Assets))

	for _, t := range tx.Texts {
		sha, err := p.client.CreateBlob(ctx, t.Content, common.EncodingUTF8)
		if err != nil {
			return nil, fmt.Errorf("uploading %s: %w", t.Path, err)
		}
		blobs[t.Path] = sha
	}

	dedupe := make(dedupeTable, len(tx.Assets))
	for _, a := range tx.Assets {
		hash := cryptox.LocalHash(a.Data)
		if prev, ok := dedupe.lookup(hash); ok {
			// identical bytes already handled this transaction: reuse the
			// chosen path's blob instead of uploading again
			blobs[a.Path] = blobs[prev]
			continue
		}

		sha, err := p.client.CreateBlob(ctx, base64.StdEncoding.EncodeToString(a.Data), common.EncodingBase64)
		if err != nil {
			return nil, fmt.Errorf("uploading %s: %w", a.Path, err)
		}
		dedupe.record(hash, a.Path)
		blobs[a.Path] = sha
	}

	return blobs, nil
}

// treeEntries flattens the transaction into the single tree request:
// created/updated paths carry their blob sha, deletions carry a null sha.
func treeEntries(tx Transaction, blobs map[string]string) []githost.TreeEntry {
	entries := make([]githost.TreeEntry, 0, len(tx.Texts)+len(tx.Assets)+len(tx.Deletes))
	seen := make(map[string]struct{})

	add := func(path string, sha *string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		entries = append(entries, githost.TreeEntry{
			Path: path,
			Mode: common.RegularFileMode,
			Type: "blob",
			SHA:  sha,
		})
	}

	for _, t := range tx.Texts {
		sha := blobs[t.Path]
		add(t.Path, &sha)
	}
	for _, a := range tx.Assets {
		sha := blobs[a.Path]
		add(a.Path, &sha)
	}
	for _, d := range tx.Deletes {
		add(d, nil)
	}
	return entries
}

// validate enforces the transaction invariants before any network call:
// at least one operation, and unique paths across the whole transaction.
// Duplicate asset paths are allowed when they are the dedup consequence of
// identical bytes; any other duplicate is a caller bug.
func validate(tx Transaction) error {
	if len(tx.Texts)+len(tx.Assets)+len(tx.Deletes) == 0 {
		return fmt.Errorf("%w: empty transaction", common.ErrValidation)
	}
	if tx.Message == "" {
		return fmt.Errorf("%w: empty commit message", common.ErrValidation)
	}

	seen := make(map[string]struct{})
	collide := func(path string) error {
		if _, ok := seen[path]; ok {
			return fmt.Errorf("%w: duplicate path %q in transaction", common.ErrValidation, path)
		}
		seen[path] = struct{}{}
		return nil
	}

	for _, t := range tx.Texts {
		if err := collide(t.Path); err != nil {
			return err
		}
	}
	assetPaths := make(map[string]string) // path → hash
	for _, a := range tx.Assets {
		hash := cryptox.LocalHash(a.Data)
		if prevHash, ok := assetPaths[a.Path]; ok {
			if prevHash == hash {
				continue // same bytes referenced twice; dedup handles it
			}
			return fmt.Errorf("%w: duplicate path %q in transaction", common.ErrValidation, a.Path)
		}
		if _, ok := seen[a.Path]; ok {
			return fmt.Errorf("%w: duplicate path %q in transaction", common.ErrValidation, a.Path)
		}
		seen[a.Path] = struct{}{}
		assetPaths[a.Path] = hash
	}
	for _, d := range tx.Deletes {
		if err := collide(d); err != nil {
			return err
		}
	}
	return nil
}
