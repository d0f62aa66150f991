package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allyabase/sessionless-go"
	"github.com/allyabase/sessionless-go/bdo"
	"github.com/allyabase/sessionless-go/dolores"
	"github.com/allyabase/sessionless-go/internal/testserver"
	"github.com/allyabase/sessionless-go/keystore"
	"github.com/allyabase/sessionless-go/sanora"
	"golang.org/x/sync/errgroup"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func cmdKeygen(_ context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "keygen")
	force := fs.Bool("force", false, "replace an existing key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := a.keyStore()
	if err != nil {
		return err
	}
	name := a.cfg.Keystore.Name
	_, err = store.Load(name)
	switch {
	case err == nil && !*force:
		return fmt.Errorf("key %q already exists, use -force to replace it", name)
	case err != nil && !errors.Is(err, keystore.ErrNotFound):
		return err
	}

	key, err := sessionless.GenerateKey()
	if err != nil {
		return err
	}
	if err := store.Save(name, key); err != nil {
		return err
	}
	a.logger.Info().Str("name", name).Msg("generated key")
	_, err = fmt.Fprintln(a.stdout, key.PublicKeyHex())
	return err
}

func cmdPubKey(_ context.Context, a *app, _ []string) error {
	key, err := a.key()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, key.PublicKeyHex())
	return err
}

func cmdKeys(_ context.Context, a *app, _ []string) error {
	store, err := a.keyStore()
	if err != nil {
		return err
	}
	names, err := store.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(a.stdout, name); err != nil {
			return err
		}
	}
	return nil
}

func cmdSign(_ context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("sign needs a message")
	}
	key, err := a.key()
	if err != nil {
		return err
	}
	sig, err := key.Sign([]byte(strings.Join(args, " ")))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, sig)
	return err
}

func cmdVerify(_ context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "verify")
	pubKey := fs.String("pubkey", "", "compressed public key in hex")
	sig := fs.String("signature", "", "signature in hex")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := sessionless.Required("pubkey", *pubKey, "signature", *sig); err != nil {
		return err
	}
	if err := sessionless.Verify(*pubKey, []byte(strings.Join(fs.Args(), " ")), *sig); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.stdout, "ok")
	return err
}

// readContent parses the JSON document given inline, or read from a file
// when it starts with '@'.
func readContent(arg string) (any, error) {
	data := []byte(arg)
	if name, ok := strings.CutPrefix(arg, "@"); ok {
		var err error
		if data, err = os.ReadFile(name); err != nil {
			return nil, err
		}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("content is not valid JSON: %w", err)
	}
	return v, nil
}

func subcommand(args []string, usage string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("missing subcommand, usage: %s", usage)
	}
	return args[0], args[1:], nil
}

func cmdBDO(ctx context.Context, a *app, args []string) error {
	sub, args, err := subcommand(args, usageBDO)
	if err != nil {
		return err
	}
	fs := newFlagSet(a, "bdo "+sub)
	uuid := fs.String("uuid", "", "uuid returned by create")
	hash := fs.String("hash", "", "content hash")
	public := fs.Bool("public", false, "make the object readable by others")
	pubKey := fs.String("pubkey", "", "owner of a public object")
	target := fs.String("url", "", "teleport target")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := a.key()
	if err != nil {
		return err
	}
	base, err := a.serviceURL("bdo")
	if err != nil {
		return err
	}
	c, err := bdo.New(base, a.clientOptions(key)...)
	if err != nil {
		return err
	}

	var out any
	switch sub {
	case "create", "update", "bases":
		if fs.NArg() != 1 {
			return fmt.Errorf("bdo %s needs one JSON argument", sub)
		}
		content, err := readContent(fs.Arg(0))
		if err != nil {
			return err
		}
		switch sub {
		case "create":
			out, err = c.CreateUser(ctx, *hash, content, *public)
		case "update":
			out, err = c.UpdateBDO(ctx, *uuid, *hash, content, *public)
		default:
			out, err = c.SaveBases(ctx, *uuid, *hash, content)
		}
		if err != nil {
			return err
		}
	case "get":
		out, err = c.GetBDO(ctx, *uuid, *hash)
	case "public":
		out, err = c.GetPublicBDO(ctx, *uuid, *hash, *pubKey)
	case "spellbooks":
		out, err = c.GetSpellbooks(ctx, *uuid, *hash)
	case "teleport":
		out, err = c.Teleport(ctx, *uuid, *hash, *target)
	case "delete":
		out, err = c.DeleteUser(ctx, *uuid, *hash)
	default:
		return fmt.Errorf("unknown bdo subcommand %q", sub)
	}
	if err != nil {
		return err
	}
	return printJSON(a.stdout, out)
}

func cmdDolores(ctx context.Context, a *app, args []string) error {
	sub, args, err := subcommand(args, usageDolores)
	if err != nil {
		return err
	}
	fs := newFlagSet(a, "dolores "+sub)
	uuid := fs.String("uuid", "", "uuid returned by create")
	title := fs.String("title", "", "video title")
	file := fs.String("file", "", "video file to upload")
	video := fs.String("video", "", "uuid of the video to tag")
	tags := fs.String("tags", "", "comma separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := a.key()
	if err != nil {
		return err
	}
	base, err := a.serviceURL("dolores")
	if err != nil {
		return err
	}
	c, err := dolores.New(base, a.clientOptions(key)...)
	if err != nil {
		return err
	}

	var out any
	switch sub {
	case "create":
		out, err = c.CreateUser(ctx)
	case "get":
		out, err = c.GetUser(ctx, *uuid)
	case "video":
		if *file == "" {
			return sessionless.MissingField("file")
		}
		f, ferr := os.Open(*file)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		out, err = c.PutVideo(ctx, *uuid, *title, filepath.Base(*file), f)
	case "feed":
		out, err = c.GetFeed(ctx, *uuid, splitTags(*tags))
	case "tag":
		out, err = c.TagVideo(ctx, *uuid, *video, splitTags(*tags))
	case "delete":
		out, err = c.DeleteUser(ctx, *uuid)
	default:
		return fmt.Errorf("unknown dolores subcommand %q", sub)
	}
	if err != nil {
		return err
	}
	return printJSON(a.stdout, out)
}

func cmdSanora(ctx context.Context, a *app, args []string) error {
	sub, args, err := subcommand(args, usageSanora)
	if err != nil {
		return err
	}
	fs := newFlagSet(a, "sanora "+sub)
	uuid := fs.String("uuid", "", "uuid returned by create")
	title := fs.String("title", "", "product title")
	description := fs.String("description", "", "product description")
	price := fs.Int64("price", 0, "price in the smallest currency unit")
	file := fs.String("file", "", "file to upload")
	productID := fs.String("product", "", "product id of an order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := a.key()
	if err != nil {
		return err
	}
	base, err := a.serviceURL("sanora")
	if err != nil {
		return err
	}
	c, err := sanora.New(base, a.clientOptions(key)...)
	if err != nil {
		return err
	}

	var out any
	switch sub {
	case "create":
		out, err = c.CreateUser(ctx)
	case "get":
		out, err = c.GetUser(ctx, *uuid)
	case "product":
		out, err = c.AddProduct(ctx, *uuid, *title, *description, *price)
	case "products":
		out, err = c.GetProducts(ctx, *uuid)
	case "artifact", "image":
		if *file == "" {
			return sessionless.MissingField("file")
		}
		f, ferr := os.Open(*file)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		if sub == "artifact" {
			out, err = c.PutArtifact(ctx, *uuid, *title, filepath.Base(*file), f)
		} else {
			out, err = c.PutImage(ctx, *uuid, *title, filepath.Base(*file), f)
		}
	case "order":
		out, err = c.AddOrder(ctx, *uuid, sanora.Order{ProductID: *productID})
	case "orders":
		out, err = c.GetOrders(ctx, *uuid, *productID)
	case "delete":
		out, err = c.DeleteUser(ctx, *uuid)
	default:
		return fmt.Errorf("unknown sanora subcommand %q", sub)
	}
	if err != nil {
		return err
	}
	return printJSON(a.stdout, out)
}

// cmdSmoke runs a create, use and delete cycle against every service with
// a throwaway key.
func cmdSmoke(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "smoke")
	local := fs.Bool("local", false, "run against an in-process test server")
	parallel := fs.Bool("parallel", false, "check services concurrently")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *local {
		srv := httptest.NewServer(testserver.New(testserver.WithLogger(a.logger)).Handler())
		defer srv.Close()
		a.cfg.BaseURL = srv.URL
		a.cfg.DirectPorts = false
		a.cfg.URLs = nil
	}

	checks := []struct {
		name string
		run  func(context.Context, *app) error
	}{
		{"bdo", smokeBDO},
		{"dolores", smokeDolores},
		{"sanora", smokeSanora},
	}

	run := func(ctx context.Context, name string, check func(context.Context, *app) error) error {
		start := time.Now()
		if err := check(ctx, a); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		a.logger.Info().Str("service", name).Dur("elapsed", time.Since(start)).Msg("smoke check passed")
		return nil
	}

	if !*parallel {
		for _, c := range checks {
			if err := run(ctx, c.name, c.run); err != nil {
				return err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for _, c := range checks {
			g.Go(func() error { return run(gctx, c.name, c.run) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(a.stdout, "ok")
	return err
}

func smokeBDO(ctx context.Context, a *app) error {
	key, err := sessionless.GenerateKey()
	if err != nil {
		return err
	}
	base, err := a.serviceURL("bdo")
	if err != nil {
		return err
	}
	c, err := bdo.New(base, a.clientOptions(key)...)
	if err != nil {
		return err
	}

	const hash = "sessionless-smoke"
	user, err := c.CreateUser(ctx, hash, map[string]any{"smoke": true}, false)
	if err != nil {
		return err
	}
	if _, err := c.GetBDO(ctx, user.UUID, hash); err != nil {
		return err
	}
	_, err = c.DeleteUser(ctx, user.UUID, hash)
	return err
}

func smokeDolores(ctx context.Context, a *app) error {
	key, err := sessionless.GenerateKey()
	if err != nil {
		return err
	}
	base, err := a.serviceURL("dolores")
	if err != nil {
		return err
	}
	c, err := dolores.New(base, a.clientOptions(key)...)
	if err != nil {
		return err
	}

	user, err := c.CreateUser(ctx)
	if err != nil {
		return err
	}
	if _, err := c.PutVideo(ctx, user.UUID, "smoke", "smoke.mp4", strings.NewReader("smoke")); err != nil {
		return err
	}
	if _, err := c.GetFeed(ctx, user.UUID, []string{"smoke"}); err != nil {
		return err
	}
	_, err = c.DeleteUser(ctx, user.UUID)
	return err
}

func smokeSanora(ctx context.Context, a *app) error {
	key, err := sessionless.GenerateKey()
	if err != nil {
		return err
	}
	base, err := a.serviceURL("sanora")
	if err != nil {
		return err
	}
	c, err := sanora.New(base, a.clientOptions(key)...)
	if err != nil {
		return err
	}

	user, err := c.CreateUser(ctx)
	if err != nil {
		return err
	}
	product, err := c.AddProduct(ctx, user.UUID, "smoke", "smoke test product", 100)
	if err != nil {
		return err
	}
	if _, err := c.GetProduct(ctx, user.UUID, product.Title); err != nil {
		return err
	}
	_, err = c.DeleteUser(ctx, user.UUID)
	return err
}
