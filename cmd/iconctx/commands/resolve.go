/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: resolve.go
Description: Single icon commands. resolve shows the ranked candidates and the chosen bitmap of
one drawable, layout prints the texts around it and split tokenizes resource names.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/deepintent-ccs/DeepIntent/pkg/imaging"
	"github.com/deepintent-ccs/DeepIntent/pkg/layout"
	"github.com/deepintent-ccs/DeepIntent/pkg/records"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/deepintent-ccs/DeepIntent/pkg/textutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunResolve resolves one drawable: iconctx resolve <app> <image>
func RunResolve(cmd *cobra.Command, args []string) error {
	logger, err := prepare()
	if err != nil {
		return err
	}
	defer logger.Close()

	appName, imageName := args[0], args[1]
	app, err := resources.OpenApp(viper.GetString("apps_dir"), appName)
	if err != nil {
		return err
	}

	materializer := imaging.NewMaterializer(logger.GetLogger(), resolverOptions()...)
	resolver := materializer.NewResolver(app)
	traces := resolver.FindLocations(imageName)
	groups := resources.RankAndGroup(traces)
	sel := materializer.SelectFrom(app, traces)
	logger.LogResolution(records.Record{App: appName, Image: imageName}, groups, resolver.Issues())

	fmt.Printf("🔎 %s / %s\n", appName, imageName)
	if len(groups) == 0 {
		fmt.Println("No candidate locations")
	}
	for i, g := range groups {
		fmt.Printf("%d. %s\n", i+1, g.Bucket)
		for _, p := range g.Paths {
			fmt.Printf("   %s\n", p)
		}
	}

	if sel == nil {
		fmt.Println("❌ No decodable image")
		return nil
	}
	fmt.Printf("✅ Chosen: %s [%s] %s %s\n", sel.Path, sel.Bucket, sel.Image.Mode, sel.Image.Size())
	if fp, err := sel.Image.Fingerprint(); err == nil {
		fmt.Printf("   Fingerprint: %s\n", fp)
	}
	fmt.Println("   Trace:")
	for _, loc := range sel.Trace {
		fmt.Printf("     %-10s %-6s %s\n", loc.Label, loc.Kind, loc.RelativePath)
	}
	return nil
}

// RunLayout prints the layout texts of one icon: iconctx layout <app> <image> <layout>
func RunLayout(cmd *cobra.Command, args []string) error {
	logger, err := prepare()
	if err != nil {
		return err
	}
	defer logger.Close()

	scope := layout.ParseScope(viper.GetString("layout_scope"))
	texts, err := layout.NewResolver(logger.GetLogger()).
		ResolveLayoutTexts(viper.GetString("apps_dir"), args[0], args[1], args[2], scope)
	if err != nil {
		return err
	}

	fmt.Printf("📝 %s / %s in %s (%s)\n", args[0], args[1], args[2], scope)
	for _, text := range texts {
		fmt.Printf("   %q [%s]\n", text, textutil.DetectLanguage(text))
	}
	fmt.Printf("Default language: %s\n", textutil.DefaultLanguage(texts))
	return nil
}

// RunSplit prints the words of resource identifiers: iconctx split <name>...
func RunSplit(cmd *cobra.Command, args []string) error {
	for _, name := range args {
		fmt.Printf("%s: %s\n", name, strings.Join(textutil.Split(name), " "))
	}
	return nil
}
