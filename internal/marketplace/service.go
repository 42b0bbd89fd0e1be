package marketplace

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/nova-cli/nova/internal/config"
	"github.com/nova-cli/nova/internal/errs"
	"github.com/nova-cli/nova/internal/paths"
	"github.com/nova-cli/nova/internal/scope"
)

// Service is the C11 façade: it orchestrates the source parser, fetcher,
// manifest validator, state store, and config mutator behind add/remove/
// list/get, depending only on a config.Store for the current effective
// configuration (spec.md §9: no global singletons).
type Service struct {
	Store      config.Store
	DataRoot   string
	WorkingDir string
	Fetcher    *Fetcher
	Logger     *zap.Logger
}

// NewService builds a Service using the process environment's data root
// (honoring NOVA_DATA_HOME) unless dataRoot is explicitly supplied.
func NewService(store config.Store, dataRoot, workingDir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dataRoot == "" {
		dataRoot = paths.DataRoot()
	}
	return &Service{
		Store:      store,
		DataRoot:   dataRoot,
		WorkingDir: workingDir,
		Fetcher:    NewFetcher(logger),
		Logger:     logger,
	}
}

func (s *Service) marketplacesDir() string {
	return filepath.Join(s.DataRoot, "marketplaces")
}

func (s *Service) stateStore() *StateStore {
	return NewStateStore(filepath.Join(s.marketplacesDir(), "data.json"))
}

// scopeConfigPath resolves the on-disk path for a scope, given the
// service's working directory. Project and user scopes require a
// discoverable project root.
func (s *Service) scopeConfigPath(sc scope.Scope) (string, error) {
	switch sc {
	case scope.Global:
		p := paths.GlobalConfigFile()
		if p == "" {
			return "", &errs.ConfigIo{Scope: errs.ScopeGlobal, Message: "no writable global config location (HOME and XDG_CONFIG_HOME both unset)"}
		}
		return p, nil
	case scope.Project, scope.User:
		wd := s.WorkingDir
		if wd == "" {
			wd, _ = os.Getwd()
		}
		root, ok := paths.FindProjectRoot(wd)
		if !ok {
			return "", &errs.ConfigNotFound{Scope: errsScopeOf(sc), ExpectedPath: filepath.Join(wd, ".nova", "config.yaml")}
		}
		if sc == scope.Project {
			return paths.ProjectConfigFile(root), nil
		}
		return paths.UserConfigFile(root), nil
	default:
		return "", &errs.Internal{Detail: "unrecognized scope " + string(sc)}
	}
}

func errsScopeOf(sc scope.Scope) errs.Scope {
	switch sc {
	case scope.Global:
		return errs.ScopeGlobal
	case scope.Project:
		return errs.ScopeProject
	case scope.User:
		return errs.ScopeUser
	default:
		return errs.Scope(sc)
	}
}

// Add implements spec.md §4.11's add operation.
func (s *Service) Add(ctx context.Context, sourceStr string, sc scope.Scope) (*Info, error) {
	source, err := ParseSource(sourceStr)
	if err != nil {
		return nil, err
	}

	effective, err := s.Store.Load()
	if err != nil {
		return nil, &errs.MarketplaceConfig{Err: err}
	}

	workDir, err := s.Fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, &errs.MarketplaceAddFailed{Source: sourceStr, Detail: err.Error()}
	}

	manifest, err := LoadManifest(workDir)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}
	name := manifest.Name

	states, err := s.stateStore().Load()
	if err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}
	for _, m := range effective.Marketplaces {
		if m.Name == name {
			os.RemoveAll(workDir)
			return nil, &errs.MarketplaceAlreadyExists{Name: name, ExistingSource: m.Source.String()}
		}
	}
	if existing, ok := states[name]; ok {
		os.RemoveAll(workDir)
		return nil, &errs.MarketplaceAlreadyExists{Name: name, ExistingSource: existing.Source.String()}
	}

	installLocation := filepath.Join(s.marketplacesDir(), name)
	if err := s.moveInto(workDir, installLocation); err != nil {
		os.RemoveAll(workDir)
		return nil, &errs.Internal{Detail: "failed to install marketplace directory: " + err.Error()}
	}

	entry := State{
		Name:            name,
		Source:          source,
		InstallLocation: installLocation,
		LastUpdated:     time.Now().UTC(),
		Description:     manifest.Description,
		BundleCount:     len(manifest.Bundles),
	}
	if err := s.stateStore().Put(entry); err != nil {
		// Best-effort compensation: remove the directory we just installed.
		if rmErr := os.RemoveAll(installLocation); rmErr != nil {
			return nil, &errs.Internal{Detail: "state write failed (" + err.Error() + ") and rollback of " + installLocation + " also failed: " + rmErr.Error()}
		}
		return nil, &errs.Internal{Detail: "state write failed, installation rolled back: " + err.Error()}
	}

	scopePath, err := s.scopeConfigPath(sc)
	if err != nil {
		if rmErr := os.RemoveAll(installLocation); rmErr != nil {
			return nil, &errs.Internal{Detail: "config mutation failed (" + err.Error() + ") and rollback also failed: " + rmErr.Error()}
		}
		s.stateStore().Delete(name)
		return nil, err
	}
	if err := config.AddEntry(scopePath, sc, scope.MarketplaceConfigEntry{Name: name, Source: source}); err != nil {
		if rmErr := os.RemoveAll(installLocation); rmErr != nil {
			return nil, &errs.Internal{Detail: "config mutation failed (" + err.Error() + ") and rollback also failed: " + rmErr.Error()}
		}
		s.stateStore().Delete(name)
		return nil, err
	}

	return &Info{Name: name, Description: manifest.Description, Source: source, BundleCount: len(manifest.Bundles)}, nil
}

// moveInto renames src to dst, falling back to copy+delete when the rename
// fails (e.g. src and dst are on different filesystems).
func (s *Service) moveInto(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyTree(context.Background(), src, dst); err != nil {
		os.RemoveAll(dst)
		return err
	}
	return os.RemoveAll(src)
}

// scopeMatch is an internal helper pairing a scope with the entry it holds,
// used to resolve remove()'s by-name / by-source ambiguity.
type scopeMatch struct {
	sc    scope.Scope
	path  string
	entry scope.MarketplaceConfigEntry
}

func (s *Service) findByName(name string) ([]scopeMatch, error) {
	var matches []scopeMatch
	for _, sc := range []scope.Scope{scope.Global, scope.Project, scope.User} {
		path, err := s.scopeConfigPath(sc)
		if err != nil {
			continue // scope not resolvable (e.g. no project root) -> simply absent
		}
		cfg, _, err := config.ReadScope(path, sc)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			continue
		}
		for _, m := range cfg.Marketplaces {
			if m.Name == name {
				matches = append(matches, scopeMatch{sc: sc, path: path, entry: m})
			}
		}
	}
	return matches, nil
}

func (s *Service) findBySource(sourceStr string) ([]scopeMatch, error) {
	var matches []scopeMatch
	for _, sc := range []scope.Scope{scope.Global, scope.Project, scope.User} {
		path, err := s.scopeConfigPath(sc)
		if err != nil {
			continue
		}
		cfg, _, err := config.ReadScope(path, sc)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			continue
		}
		for _, m := range cfg.Marketplaces {
			if m.Source.String() == sourceStr {
				matches = append(matches, scopeMatch{sc: sc, path: path, entry: m})
			}
		}
	}
	return matches, nil
}

// Remove implements spec.md §4.11's remove operation.
func (s *Service) Remove(ctx context.Context, nameOrSource string, requestedScope *scope.Scope) (*Info, error) {
	matches, err := s.findByName(nameOrSource)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		matches, err = s.findBySource(nameOrSource)
		if err != nil {
			return nil, err
		}
	}
	if len(matches) == 0 {
		return nil, &errs.MarketplaceNotFound{NameOrSource: nameOrSource}
	}

	var target scopeMatch
	if requestedScope != nil {
		found := false
		for _, m := range matches {
			if m.sc == *requestedScope {
				target = m
				found = true
				break
			}
		}
		if !found {
			return nil, &errs.MarketplaceNotFound{NameOrSource: nameOrSource, Reason: "not present in scope " + string(*requestedScope)}
		}
	} else if len(matches) > 1 {
		scopes := ""
		for i, m := range matches {
			if i > 0 {
				scopes += ", "
			}
			scopes += string(m.sc)
		}
		return nil, &errs.MarketplaceNotFound{NameOrSource: nameOrSource, Reason: "ambiguous: present in " + scopes}
	} else {
		target = matches[0]
	}

	states, err := s.stateStore().Load()
	if err != nil {
		return nil, err
	}
	prior, hadState := states[target.entry.Name]

	if _, err := config.RemoveEntry(target.path, target.sc, target.entry.Name); err != nil {
		return nil, err
	}

	installLocation := filepath.Join(s.marketplacesDir(), target.entry.Name)
	os.RemoveAll(installLocation)

	if hadState {
		if err := s.stateStore().Delete(target.entry.Name); err != nil {
			return nil, err
		}
	}

	info := &Info{Name: target.entry.Name, Source: target.entry.Source}
	if hadState {
		info.Description = prior.Description
		info.BundleCount = prior.BundleCount
	}
	return info, nil
}

// List implements spec.md §4.11's list operation: effective-config order,
// joined with state for bundle counts (zero if the state entry is
// missing).
func (s *Service) List() ([]Info, error) {
	effective, err := s.Store.Load()
	if err != nil {
		return nil, &errs.MarketplaceConfig{Err: err}
	}
	states, err := s.stateStore().Load()
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(effective.Marketplaces))
	for _, m := range effective.Marketplaces {
		info := Info{Name: m.Name, Source: m.Source}
		if st, ok := states[m.Name]; ok {
			info.Description = st.Description
			info.BundleCount = st.BundleCount
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Get implements spec.md §4.11's get operation.
func (s *Service) Get(name string) (*Info, error) {
	infos, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Name == name {
			return &info, nil
		}
	}
	return nil, &errs.MarketplaceNotFound{NameOrSource: name}
}
