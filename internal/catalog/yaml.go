package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/playperu/guessactor/internal/game"
)

//go:embed demo_stages.yaml
var demoStagesYAML []byte

type stagesFile struct {
	Stages []stageDoc `yaml:"stages"`
}

type stageDoc struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Free   bool       `yaml:"free"`
	Price  *int       `yaml:"price"`
	Actors []actorDoc `yaml:"actors"`
}

type actorDoc struct {
	Name    string   `yaml:"name"`
	Image   string   `yaml:"image"`
	Options []string `yaml:"options"`
}

// ParseStages reads a YAML stage file:
//
//	stages:
//	  - id: stage1
//	    title: Classics
//	    free: true
//	    actors:
//	      - name: Al Pacino
//	        image: https://...
//	        options: [Robert De Niro, Joe Pesci]
func ParseStages(data []byte) ([]game.Stage, error) {
	var f stagesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing stages: %w", err)
	}
	stages := make([]game.Stage, 0, len(f.Stages))
	for _, d := range f.Stages {
		st := game.Stage{ID: d.ID, Title: d.Title, Free: d.Free, Price: d.Price}
		for _, a := range d.Actors {
			st.Actors = append(st.Actors, game.Actor{Name: a.Name, Image: a.Image, Options: a.Options})
		}
		stages = append(stages, st)
	}
	return stages, nil
}

// Import writes every stage, stopping at the first invalid one.
func (c *Catalog) Import(ctx context.Context, stages []game.Stage) (int, error) {
	for i, st := range stages {
		if _, err := c.Write(ctx, st.ID, st); err != nil {
			return i, fmt.Errorf("stage %q: %w", st.ID, err)
		}
	}
	return len(stages), nil
}

// SeedDemo loads the bundled demo stages into an empty catalog.
func (c *Catalog) SeedDemo(ctx context.Context) (int, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	if len(snap.Stages) > 0 {
		return 0, nil
	}
	stages, err := ParseStages(demoStagesYAML)
	if err != nil {
		return 0, err
	}
	return c.Import(ctx, stages)
}
