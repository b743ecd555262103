package store_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/zylang/zyc/internal/check"
	"github.com/zylang/zyc/internal/ir"
	"github.com/zylang/zyc/internal/store"
)

func newStoreFromArchive(t *testing.T, data string) *store.Store {
	t.Helper()
	a := txtar.Parse([]byte(data))
	fsys, err := txtar.FS(a)
	require.NoError(t, err)
	return store.New(fsys, uuid.New())
}

func TestLoadAllSingleModule(t *testing.T) {
	s := newStoreFromArchive(t, `
-- main.zy --
fn main { }
`)
	h, err := s.LoadAll("main.zy")
	require.NoError(t, err)
	require.Len(t, s.Handles(), 1)

	root := s.Root(h)
	require.NotNil(t, root)
	_, ok := root.Lookup("main")
	require.True(t, ok)
}

func TestLoadAllFollowsImportAndInjectsExportedName(t *testing.T) {
	s := newStoreFromArchive(t, `
-- main.zy --
import greet from "./b.zy"; fn main { greet() }
-- b.zy --
export fn greet { }
`)
	h, err := s.LoadAll("main.zy")
	require.NoError(t, err)
	require.Len(t, s.Handles(), 2)

	root := s.Root(h)
	member, ok := root.Lookup("greet")
	require.True(t, ok)
	require.Equal(t, ir.MemberFunction, member.Kind)
}

func TestLoadAllResolvesDirectoryImportToIndexZy(t *testing.T) {
	s := newStoreFromArchive(t, `
-- main.zy --
import helper from "./lib"; fn main { helper() }
-- lib/index.zy --
export fn helper { }
`)
	h, err := s.LoadAll("main.zy")
	require.NoError(t, err)
	root := s.Root(h)
	_, ok := root.Lookup("helper")
	require.True(t, ok)
}

func TestLoadAllDiamondImportSharesOneModule(t *testing.T) {
	s := newStoreFromArchive(t, `
-- main.zy --
import a from "./a.zy"; import b from "./b.zy"; fn main { }
-- a.zy --
import shared from "./shared.zy"; export fn a { }
-- b.zy --
import shared from "./shared.zy"; export fn b { }
-- shared.zy --
export fn shared { }
`)
	_, err := s.LoadAll("main.zy")
	require.NoError(t, err)
	require.Len(t, s.Handles(), 4)
}

func TestCheckerDrivenByStoreAcrossModules(t *testing.T) {
	s := newStoreFromArchive(t, `
-- main.zy --
import greet from "./b.zy"; fn main { x : i32 := greet() }
-- b.zy --
export fn greet -> i32 { 1 }
`)
	_, err := s.LoadAll("main.zy")
	require.NoError(t, err)

	err = check.New(s).Run()
	require.NoError(t, err)
}
