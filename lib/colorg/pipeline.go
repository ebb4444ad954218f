// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package colorg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/colorg/lib/colorrule"
	"github.com/bureau-foundation/colorg/lib/hostsettings"
	"github.com/bureau-foundation/colorg/lib/orgsource"
)

// Resolution records what one pass of the pipeline saw and decided.
type Resolution struct {
	Options hostsettings.Options

	// Ref is the located config file. Found is false when the
	// workspace has none.
	Ref   orgsource.Ref
	Found bool

	// Refs is every config file in the workspace, in precedence order.
	// Ref is its first entry.
	Refs []orgsource.Ref

	// Org is the extracted identifier, empty when absent.
	Org string

	// Result is the rule match for Org.
	Result colorrule.Result

	// RuleErrors lists rules skipped because their pattern is invalid.
	RuleErrors []*colorrule.RuleError
}

// Pipeline locates the org config, extracts the org, matches it against
// the rules, and writes the resulting colors.
type Pipeline struct {
	locator *orgsource.Locator
	options hostsettings.OptionsSource
	writer  *Writer
	logger  *slog.Logger
}

// NewPipeline assembles a Pipeline.
func NewPipeline(locator *orgsource.Locator, options hostsettings.OptionsSource, writer *Writer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		locator: locator,
		options: options,
		writer:  writer,
		logger:  logger,
	}
}

// Evaluate runs every stage except the write. Every absence (no
// config file, no org field, no matching rule) yields the zero pair.
func (p *Pipeline) Evaluate(ctx context.Context) (Resolution, error) {
	options, err := p.options.LoadOptions(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("loading options: %w", err)
	}

	resolution := Resolution{
		Options: options,
		Result:  colorrule.Result{Index: -1},
	}

	resolution.Refs = p.locator.LocateAll()
	if len(resolution.Refs) > 0 {
		resolution.Ref, resolution.Found = resolution.Refs[0], true
		resolution.Org, _ = orgsource.ExtractIdentifier(resolution.Ref)
	}

	matcher := colorrule.Compile(options.Rules)
	resolution.RuleErrors = matcher.Errors()
	resolution.Result = matcher.Match(resolution.Org)
	return resolution, nil
}

// Resolve evaluates and applies the result. It always ends in a write
// attempt once options are known, so a vanished org clears stale
// colors.
func (p *Pipeline) Resolve(ctx context.Context) (Resolution, error) {
	resolution, err := p.Evaluate(ctx)
	if err != nil {
		return resolution, err
	}

	for _, ruleError := range resolution.RuleErrors {
		p.logger.Warn("skipping invalid rule", "rule", ruleError.Index, "regex", ruleError.Regex, "error", ruleError.Err)
	}
	p.logger.Debug("resolved org",
		"path", resolution.Ref.Path,
		"org", resolution.Org,
		"rule", resolution.Result.Index,
		"scope", resolution.Options.Scope,
	)

	if err := p.writer.Apply(ctx, resolution.Result.Pair, resolution.Options); err != nil {
		return resolution, err
	}
	return resolution, nil
}

// ClearOwnedKeys removes the owned keys at the currently configured
// scope.
func (p *Pipeline) ClearOwnedKeys(ctx context.Context) error {
	options, err := p.options.LoadOptions(ctx)
	if err != nil {
		return fmt.Errorf("loading options: %w", err)
	}
	return p.writer.ClearOwnedKeys(ctx, options.Scope)
}

// Clear applies the zero pair under the given options.
func (p *Pipeline) Clear(ctx context.Context, options hostsettings.Options) error {
	return p.writer.Apply(ctx, colorrule.ColorPair{}, options)
}

// LoadOptions exposes the pipeline's options source to the coordinator.
func (p *Pipeline) LoadOptions(ctx context.Context) (hostsettings.Options, error) {
	return p.options.LoadOptions(ctx)
}

// Locator returns the pipeline's config locator.
func (p *Pipeline) Locator() *orgsource.Locator {
	return p.locator
}
