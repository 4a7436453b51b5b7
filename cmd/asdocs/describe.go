package main

import (
	"github.com/spf13/cobra"

	"asdocs/internal/resolve"
)

var (
	describeMarkdown bool
	describeParam    string
	describeKind     string
	describeExplain  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <archive> <qualifiedName>",
	Short: "Show the documentation of a symbol compiled into an archive",
	Long: `Resolve the documentation of a symbol as an editor would for a definition
loaded from the given library archive.

Examples:
  asdocs describe frameworks/libs/framework.swc mx.core.UIComponent
  asdocs describe playerglobal.swc flash.display.Sprite --markdown
  asdocs describe framework.swc mx.core.UIComponent.setStyle --param styleProp
  asdocs describe playerglobal.swc trace --kind function --explain`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := describeOptions{
			Archive:  args[0],
			Name:     args[1],
			Markdown: describeMarkdown,
			Param:    describeParam,
			Kind:     describeKind,
			Explain:  describeExplain,
		}
		return runWithSession(cmd, func(s *session) (interface{}, error) {
			return describe(s.engine, opts)
		})
	},
}

func init() {
	describeCmd.Flags().BoolVar(&describeMarkdown, "markdown", false, "Render Markdown instead of plain text")
	describeCmd.Flags().StringVar(&describeParam, "param", "", "Describe this parameter of the function instead")
	describeCmd.Flags().StringVar(&describeKind, "kind", "", "Symbol kind (default: class, or function with --param)")
	describeCmd.Flags().BoolVar(&describeExplain, "explain", false, "Report which metadata list answered")
	rootCmd.AddCommand(describeCmd)
}

type describeOptions struct {
	Archive  string
	Name     string
	Markdown bool
	Param    string
	Kind     string
	Explain  bool
}

// DescribeResponse is the output of describe
type DescribeResponse struct {
	Archive       string      `json:"archive" yaml:"archive"`
	Symbol        string      `json:"symbol" yaml:"symbol"`
	Kind          string      `json:"kind" yaml:"kind"`
	Parameter     string      `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Markdown      bool        `json:"markdown" yaml:"markdown"`
	Found         bool        `json:"found" yaml:"found"`
	Documentation string      `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Source        *SourceInfo `json:"source,omitempty" yaml:"source,omitempty"`
}

// SourceInfo reports the authoritative metadata list of an archive
type SourceInfo struct {
	Tier    string `json:"tier,omitempty" yaml:"tier,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Entries int    `json:"entries" yaml:"entries"`
	Code    string `json:"code,omitempty" yaml:"code,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

func newSourceInfo(s resolve.Sources) *SourceInfo {
	return &SourceInfo{
		Tier:    string(s.Tier),
		Path:    s.Path,
		Entries: s.Entries,
		Code:    string(s.Code),
		Message: s.Message,
	}
}

func describe(engine *resolve.Engine, opts describeOptions) (*DescribeResponse, error) {
	kind := resolve.KindClass
	if opts.Param != "" {
		kind = resolve.KindFunction
	}
	if opts.Kind != "" {
		k, err := resolve.ParseKind(opts.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	def := &resolve.Definition{Name: opts.Name, SymbolKind: kind, Path: opts.Archive}
	resp := &DescribeResponse{
		Archive:   opts.Archive,
		Symbol:    opts.Name,
		Kind:      kind.String(),
		Parameter: opts.Param,
		Markdown:  opts.Markdown,
	}

	if opts.Param != "" {
		resp.Documentation, resp.Found = engine.ParameterDocumentation(&resolve.Param{Name: opts.Param, Function: def}, opts.Markdown)
	} else {
		resp.Documentation, resp.Found = engine.SymbolDocumentation(def, opts.Markdown, true)
	}

	if opts.Explain {
		resp.Source = newSourceInfo(engine.Sources(opts.Archive))
	}
	return resp, nil
}
