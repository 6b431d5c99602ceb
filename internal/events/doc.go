// Package events carries pipeline stage outcomes from the services that
// produce them to handlers that consume them.
//
// Every stage the generation pipeline runs, from compose through
// extract_card, is reported as a StageEvent through an EventEmitter. The
// metrics recorder is the main subscriber; the pipeline does not know it
// exists.
package events
