package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/prefeitura-rio/gorio-admin/core/course"
)

// classify prints the display status of each course in file at time now.
func (cli *commandLine) classify(file string, now time.Time) error {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}

	var courses []course.APICourse
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &courses)
	} else {
		var ac course.APICourse
		err = json.Unmarshal(trimmed, &ac)
		courses = append(courses, ac)
	}
	if err != nil {
		return fmt.Errorf("decoding %s: %w", file, err)
	}

	for _, ac := range courses {
		c, err := course.FromAPI(ac)
		if err != nil {
			return fmt.Errorf("course %d: %w", ac.ID, err)
		}
		fmt.Fprintf(cli.out, "%d\t%s\t%s\n", c.ID, course.Classify(now, c.Schedule()), c.Title)
	}
	return nil
}
