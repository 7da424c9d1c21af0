package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/floorwarden/warden/internal/client"
	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/models"
	"github.com/floorwarden/warden/internal/state"
)

// shortID is how offline ids are printed; any unique prefix is accepted back.
const shortID = 8

func (cli *commandLine) printLocalUsage() {
	fmt.Fprintln(cli.out, "Usage: local [-dir DIR] COMMAND")
	fmt.Fprintln(cli.out, "  students [-q TEXT]")
	fmt.Fprintln(cli.out, "  add-student -name N -room R [-phone P]")
	fmt.Fprintln(cli.out, "  remove -student ID")
	fmt.Fprintln(cli.out, "  collect -title T -amount N [-deadline YYYY-MM-DD]")
	fmt.Fprintln(cli.out, "  pay -collection ID -student ID[,ID...] [-unpaid]")
	fmt.Fprintln(cli.out, "  mark -student ID[,ID...] -status in|out|late [-date YYYY-MM-DD]")
	fmt.Fprintln(cli.out, "  stats")
}

// runLocal works on the offline floor book kept as one JSON file in dir.
func (cli *commandLine) runLocal(args []string) error {
	localCmd := flag.NewFlagSet("local", flag.ContinueOnError)
	localCmd.SetOutput(cli.out)
	dir := localCmd.String("dir", filepath.Dir(client.DefaultSessionPath()), "Where the floor book is kept.")
	if err := localCmd.Parse(args); err != nil {
		return err
	}
	rest := localCmd.Args()
	if len(rest) == 0 {
		cli.printLocalUsage()
		return errHelp
	}
	book := state.NewStore(state.FileStorage{Dir: *dir}, true)

	studentsCmd := flag.NewFlagSet("students", flag.ContinueOnError)
	studentsQ := studentsCmd.String("q", "", "Search by name, room or phone.")

	addCmd := flag.NewFlagSet("add-student", flag.ContinueOnError)
	addName := addCmd.String("name", "", "First name.")
	addRoom := addCmd.String("room", "", "Room number.")
	addPhone := addCmd.String("phone", "", "Phone number.")

	removeCmd := flag.NewFlagSet("remove", flag.ContinueOnError)
	removeStudent := removeCmd.String("student", "", "Student id.")

	collectCmd := flag.NewFlagSet("collect", flag.ContinueOnError)
	collectTitle := collectCmd.String("title", "", "What the money is for.")
	collectAmount := collectCmd.Int64("amount", 0, "Amount per student, so'm.")
	collectDeadline := collectCmd.String("deadline", "", "Due date.")

	payCmd := flag.NewFlagSet("pay", flag.ContinueOnError)
	payCollection := payCmd.String("collection", "", "Collection id.")
	payStudents := payCmd.String("student", "", "Comma separated student ids.")
	payUnpaid := payCmd.Bool("unpaid", false, "Mark as unpaid instead.")

	markCmd := flag.NewFlagSet("mark", flag.ContinueOnError)
	markStudents := markCmd.String("student", "", "Comma separated student ids.")
	markStatus := markCmd.String("status", "in", "in, out or late.")
	markDate := markCmd.String("date", "", "Day of the roll call, today when empty.")

	for _, fs := range []*flag.FlagSet{studentsCmd, addCmd, removeCmd, collectCmd, payCmd, markCmd} {
		fs.SetOutput(cli.out)
	}

	switch rest[0] {
	case "students":
		if err := studentsCmd.Parse(rest[1:]); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tROOM\tNAME\tPHONE\t")
		for _, s := range state.SearchStudents(book.State(), *studentsQ) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", short(s.ID), s.Room, s.Name, s.Phone)
		}
		return tw.Flush()

	case "add-student":
		if err := addCmd.Parse(rest[1:]); err != nil {
			return err
		}
		if *addName == "" || *addRoom == "" {
			addCmd.Usage()
			return errHelp
		}
		s := book.Dispatch(state.AddStudent{Student: state.Student{Name: *addName, Room: *addRoom, Phone: *addPhone}})
		st := s.Students[len(s.Students)-1]
		fmt.Fprintf(cli.out, "Added %s %s (room %s)\n", short(st.ID), st.Name, st.Room)
		return nil

	case "remove":
		if err := removeCmd.Parse(rest[1:]); err != nil {
			return err
		}
		id, err := resolveID(*removeStudent, studentIDs(state.ActiveStudents(book.State())))
		if err != nil {
			return err
		}
		book.Dispatch(state.DeleteStudent{ID: id})
		fmt.Fprintf(cli.out, "Removed %s\n", short(id))
		return nil

	case "collect":
		if err := collectCmd.Parse(rest[1:]); err != nil {
			return err
		}
		if *collectTitle == "" || *collectAmount <= 0 {
			collectCmd.Usage()
			return errHelp
		}
		s := book.Dispatch(state.AddCollection{Collection: state.Collection{
			Title: *collectTitle, Amount: *collectAmount, DueDate: *collectDeadline,
		}})
		c := s.Collections[len(s.Collections)-1]
		n := 0
		for _, p := range s.Payments {
			if p.CollectionID == c.ID {
				n++
			}
		}
		fmt.Fprintf(cli.out, "Collection %s created, %d payments\n", short(c.ID), n)
		return nil

	case "pay":
		if err := payCmd.Parse(rest[1:]); err != nil {
			return err
		}
		s := book.State()
		cids := make([]string, len(s.Collections))
		for i, c := range s.Collections {
			cids[i] = c.ID
		}
		cid, err := resolveID(*payCollection, cids)
		if err != nil {
			return err
		}
		sids, err := resolveIDs(*payStudents, studentIDs(s.Students))
		if err != nil {
			return err
		}
		n := 0
		for _, sid := range sids {
			for _, p := range s.Payments {
				if p.CollectionID != cid || p.StudentID != sid || p.IsPaid == !*payUnpaid {
					continue
				}
				p.IsPaid = !*payUnpaid
				book.Dispatch(state.UpdatePayment{Payment: p})
				n++
			}
		}
		fmt.Fprintf(cli.out, "%d payments updated\n", n)
		return nil

	case "mark":
		if err := markCmd.Parse(rest[1:]); err != nil {
			return err
		}
		status, err := models.ParseAttendanceStatus(*markStatus)
		if err != nil {
			return err
		}
		date := *markDate
		if date == "" {
			date = config.Today()
		}
		sids, err := resolveIDs(*markStudents, studentIDs(state.ActiveStudents(book.State())))
		if err != nil {
			return err
		}
		for _, sid := range sids {
			markDay(book, sid, date, status)
		}
		fmt.Fprintf(cli.out, "%d records updated\n", len(sids))
		return nil

	case "stats":
		st := state.Leader(book.State(), config.Today())
		fmt.Fprintf(cli.out, "Active students: %d\n", st.ActiveStudents)
		fmt.Fprintf(cli.out, "Today present: %d%% (late %d, absent %d)\n", st.AttendanceRate, st.Today.Late, st.Today.Absent)
		fmt.Fprintf(cli.out, "Collected: %d%% (%d / %d)\n", st.CollectionRate, st.TotalCollected, st.Expected)
		fmt.Fprintf(cli.out, "Open requests: %d\n", st.OpenRequests)
		return nil

	default:
		cli.printLocalUsage()
		return errHelp
	}
}

// markDay keeps one attendance record per student and date.
func markDay(book *state.Store, studentID, date string, status models.AttendanceStatus) {
	for _, rec := range book.State().Attendance {
		if rec.StudentID == studentID && rec.Date == date {
			rec.Status = status
			book.Dispatch(state.UpdateAttendance{Record: rec})
			return
		}
	}
	book.Dispatch(state.AddAttendance{Record: state.AttendanceRecord{StudentID: studentID, Date: date, Status: status}})
}

func studentIDs(students []state.Student) []string {
	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	return ids
}

func resolveIDs(list string, ids []string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		id, err := resolveID(part, ids)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, errHelp
	}
	return out, nil
}

// resolveID expands a unique id prefix.
func resolveID(prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", errHelp
	}
	found := ""
	for _, id := range ids {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("id %q is ambiguous", prefix)
		}
		found = id
	}
	if found == "" {
		return "", fmt.Errorf("no record with id %q", prefix)
	}
	return found, nil
}

func short(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}
