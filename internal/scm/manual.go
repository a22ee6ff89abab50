// Package scm computes git-compatible content hashes without a git
// binary. The monorepo task runner keys its caches off these hashes;
// they match `git hash-object` byte for byte.
package scm

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strconv"

	"github.com/gobwas/glob"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/vercel/turbopack/cli/internal/turbopath"
)

// GitHashes maps repo-anchored unix paths to their blob hash.
type GitHashes = map[turbopath.AnchoredUnixPath]string

// GitLikeHashFile hashes a file the way git hashes a blob: the SHA-1
// of "blob " + size + NUL + contents. Symlinks to files are followed
// and hashed by their target's contents; symlinks to directories and
// broken symlinks fail with the underlying error.
func GitLikeHashFile(path turbopath.AbsoluteSystemPath) (string, error) {
	file, err := path.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}
	hash := sha1.New()
	hash.Write([]byte("blob"))
	hash.Write([]byte(" "))
	hash.Write([]byte(strconv.FormatInt(stat.Size(), 10)))
	hash.Write([]byte{0})

	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// HashFiles hashes the listed files relative to rootPath. With
// allowMissing, files that don't exist are skipped instead of failing;
// every other error (including a symlink that points at a directory)
// is returned.
func HashFiles(rootPath turbopath.AbsoluteSystemPath, files []turbopath.AnchoredSystemPath, allowMissing bool) (GitHashes, error) {
	hashes := make(GitHashes, len(files))
	for _, file := range files {
		hash, err := GitLikeHashFile(file.RestoreAnchor(rootPath))
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "could not hash file %v", file.ToString())
		}
		hashes[file.ToUnixPath()] = hash
	}
	return hashes, nil
}

// inputPatterns is the compiled include/exclude set from the raw
// input patterns. A pattern starting with '!' excludes.
type inputPatterns struct {
	includes []glob.Glob
	excludes []glob.Glob
}

func compileInputPatterns(inputs []string) (*inputPatterns, error) {
	patterns := &inputPatterns{}
	for _, pattern := range inputs {
		raw := pattern
		exclude := false
		if len(raw) > 0 && raw[0] == '!' {
			raw = raw[1:]
			exclude = true
		}
		compiled, err := glob.Compile(raw, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid input pattern %q", pattern)
		}
		if exclude {
			patterns.excludes = append(patterns.excludes, compiled)
		} else {
			patterns.includes = append(patterns.includes, compiled)
		}
	}
	return patterns, nil
}

func (p *inputPatterns) matches(path turbopath.RelativeUnixPath) bool {
	target := path.ToString()
	if len(p.includes) > 0 {
		included := false
		for _, include := range p.includes {
			if include.Match(target) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, exclude := range p.excludes {
		if exclude.Match(target) {
			return false
		}
	}
	return true
}

// GetPackageFileHashes walks the package under repoRoot and hashes
// every file that survives gitignore processing and the include/
// exclude input patterns. Symlinks inside the walk are skipped.
func GetPackageFileHashes(repoRoot turbopath.AbsoluteSystemPath, packagePath turbopath.AnchoredSystemPath, inputs []string) (GitHashes, error) {
	fullPackagePath := packagePath.RestoreAnchor(repoRoot)

	patterns, err := compileInputPatterns(inputs)
	if err != nil {
		return nil, err
	}

	ignores, err := loadGitignores(repoRoot, fullPackagePath)
	if err != nil {
		return nil, err
	}

	hashes := make(GitHashes)
	err = godirwalk.Walk(fullPackagePath.ToString(), &godirwalk.Options{
		Unsorted: true,
		Callback: func(name string, dirent *godirwalk.Dirent) error {
			path := turbopath.AbsoluteSystemPathFromUpstream(name)
			anchored, err := path.RelativeTo(fullPackagePath)
			if err != nil {
				return err
			}
			unixPath := anchored.ToUnixPath()

			if dirent.IsDir() {
				if ignores.ignored(unixPath, true) {
					return godirwalk.SkipThis
				}
				return nil
			}
			if dirent.IsSymlink() {
				return nil
			}
			if ignores.ignored(unixPath, false) {
				return nil
			}
			if !patterns.matches(turbopath.RelativeUnixPathFromUpstream(unixPath.ToString())) {
				return nil
			}

			hash, err := GitLikeHashFile(path)
			if err != nil {
				return errors.Wrapf(err, "could not hash file %v", unixPath.ToString())
			}
			hashes[unixPath] = hash
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// packageIgnores layers the repo-root .gitignore over the package's
// own .gitignore, matched against package-relative paths.
type packageIgnores struct {
	root *gitignore.GitIgnore
	pkg  *gitignore.GitIgnore
}

func loadGitignores(repoRoot turbopath.AbsoluteSystemPath, fullPackagePath turbopath.AbsoluteSystemPath) (*packageIgnores, error) {
	ignores := &packageIgnores{}
	rootFile := repoRoot.UntypedJoin(".gitignore")
	if _, err := rootFile.Lstat(); err == nil {
		compiled, err := gitignore.CompileIgnoreFile(rootFile.ToString())
		if err != nil {
			return nil, errors.Wrap(err, "reading root .gitignore")
		}
		ignores.root = compiled
	}
	pkgFile := fullPackagePath.UntypedJoin(".gitignore")
	if _, err := pkgFile.Lstat(); err == nil {
		compiled, err := gitignore.CompileIgnoreFile(pkgFile.ToString())
		if err != nil {
			return nil, errors.Wrap(err, "reading package .gitignore")
		}
		ignores.pkg = compiled
	}
	return ignores, nil
}

func (p *packageIgnores) ignored(path turbopath.AnchoredUnixPath, isDir bool) bool {
	target := path.ToString()
	if target == "." || target == "" {
		return false
	}
	if isDir {
		target += "/"
	}
	if p.root != nil && p.root.MatchesPath(target) {
		return true
	}
	if p.pkg != nil && p.pkg.MatchesPath(target) {
		return true
	}
	return false
}
